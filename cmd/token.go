package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/expense-reimbursement/internal/auth"
	"github.com/spf13/cobra"
)

var (
	tokenUserID int64
	tokenEmail  string
	tokenTTL    time.Duration
)

// tokenCmd mints an access token with the configured private key, for local
// testing against the claims API.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a development access token",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, _, err := loadConfigAndLogger()
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		privateKey, err := cfg.Security.GetPrivateKey()
		if err != nil {
			log.Fatalf("invalid JWT private key: %v", err)
		}
		publicKey, err := cfg.Security.GetPublicKey()
		if err != nil {
			log.Fatalf("invalid JWT public key: %v", err)
		}

		ttl := tokenTTL
		if ttl == 0 {
			ttl = cfg.Security.AccessTokenDuration
		}

		token, err := auth.NewJWTTokenGenerator(privateKey, publicKey, ttl).GenerateAccessToken(tokenUserID, tokenEmail)
		if err != nil {
			log.Fatalf("failed to issue token: %v", err)
		}
		fmt.Println(token)
	},
}

func init() {
	tokenCmd.Flags().Int64Var(&tokenUserID, "user-id", 1, "user id placed in the token")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "fadhil@mail.com", "email placed in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default: security.access_token_duration)")

	rootCmd.AddCommand(tokenCmd)
}
