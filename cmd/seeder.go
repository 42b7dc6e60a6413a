package cmd

import (
	"fmt"
	"log"

	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	claimDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/claim"
	"github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/masterdata"
	userDatamodel "github.com/frahmantamala/expense-reimbursement/internal/core/datamodel/user"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with master data and demo users for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, _, err := loadConfigAndLogger()
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer sqlDB.Close()

		db, err := initGorm(sqlDB)
		if err != nil {
			log.Fatalf("failed to init gorm: %v", err)
		}

		if clearData {
			if err := clearSeedData(db); err != nil {
				log.Fatalf("failed to clear data: %v", err)
			}
			fmt.Println("Cleared existing claims and master data")
		}

		if err := seedMasterData(db); err != nil {
			log.Fatalf("failed to seed master data: %v", err)
		}
		if err := seedUsers(db, cfg.Security.BCryptCost); err != nil {
			log.Fatalf("failed to seed users: %v", err)
		}

		fmt.Println("Seeding complete")
	},
}

func clearSeedData(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		models := []interface{}{
			&claimDatamodel.Attachment{},
			&claimDatamodel.Item{},
			&claimDatamodel.Claim{},
			&userDatamodel.User{},
			&masterdata.ExpenseCategory{},
			&masterdata.Project{},
			&masterdata.CostCenter{},
			&masterdata.Department{},
		}
		for _, m := range models {
			if !tx.Migrator().HasTable(m) {
				continue
			}
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func seedMasterData(db *gorm.DB) error {
	departments := []masterdata.Department{
		{Code: "FIN", Name: "Finance"},
		{Code: "ENG", Name: "Engineering"},
		{Code: "SAL", Name: "Sales"},
	}
	for _, d := range departments {
		if err := db.Where(masterdata.Department{Code: d.Code}).FirstOrCreate(&d).Error; err != nil {
			return fmt.Errorf("department %s: %w", d.Code, err)
		}
	}

	costCenters := []masterdata.CostCenter{
		{Code: "CC-100", Name: "Head Office"},
		{Code: "CC-200", Name: "Regional Operations"},
	}
	for _, c := range costCenters {
		if err := db.Where(masterdata.CostCenter{Code: c.Code}).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("cost center %s: %w", c.Code, err)
		}
	}

	projects := []masterdata.Project{
		{Code: "PRJ-ERP", Name: "ERP Rollout"},
		{Code: "PRJ-MOB", Name: "Mobile App"},
	}
	for _, p := range projects {
		if err := db.Where(masterdata.Project{Code: p.Code}).FirstOrCreate(&p).Error; err != nil {
			return fmt.Errorf("project %s: %w", p.Code, err)
		}
	}

	categories := []masterdata.ExpenseCategory{
		{Name: "travel", Description: "business travel and transportation"},
		{Name: "meals", Description: "meals and entertainment"},
		{Name: "lodging", Description: "hotels and accommodation"},
		{Name: "office", Description: "office supplies and equipment"},
	}
	for _, c := range categories {
		if err := db.Where(masterdata.ExpenseCategory{Name: c.Name}).FirstOrCreate(&c).Error; err != nil {
			return fmt.Errorf("category %s: %w", c.Name, err)
		}
	}

	fmt.Println("Seeded departments, cost centers, projects and categories")
	return nil
}

func seedUsers(db *gorm.DB, bcryptCost int) error {
	hash, err := auth.HashPassword("password", bcryptCost)
	if err != nil {
		return err
	}

	var finance masterdata.Department
	if err := db.Where("code = ?", "FIN").First(&finance).Error; err != nil {
		return fmt.Errorf("lookup finance department: %w", err)
	}

	users := []userDatamodel.User{
		{Email: "fadhil@mail.com", Name: "Fadhil"},
		{Email: "padil@mail.com", Name: "Padil Admin", DepartmentID: &finance.ID},
	}
	for _, u := range users {
		u.PasswordHash = hash
		u.IsActive = true
		if err := db.Where(userDatamodel.User{Email: u.Email}).FirstOrCreate(&u).Error; err != nil {
			return fmt.Errorf("user %s: %w", u.Email, err)
		}
		fmt.Println("Seeded user:", u.Email, "id:", u.ID)
	}
	return nil
}
