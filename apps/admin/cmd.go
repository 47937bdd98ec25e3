package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/rollcallhq/rollcall/core"
	"github.com/rollcallhq/rollcall/core/account"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db       *sql.DB
	conf     *core.Config
	acctRepo account.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createaccount -email EMAIL - create an account; the password will be prompted next")
	fmt.Println("  migrate up|down            - apply or roll back database migrations")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	createAccountCmd := flag.NewFlagSet("createaccount", flag.ExitOnError)
	createAccountEmail := createAccountCmd.String("email", "", "The account's email. The password will be prompted next.")

	switch args[1] {
	case "createaccount":
		if err := createAccountCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *createAccountEmail == "" {
			createAccountCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			createAccountCmd.Usage()
			return errHelp
		}
		return cli.createAccount(*createAccountEmail, string(pwd))
	case "migrate":
		return cli.migrate(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}
