package main

import "github.com/frahmantamala/expense-reimbursement/cmd"

func main() {
	cmd.Execute()
}
