// ABOUTME: User management CLI commands
// ABOUTME: Adds accounts, sets passwords with a hidden prompt, and lists the user store
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/wolfcarports/salesdesk/auth"
	"github.com/wolfcarports/salesdesk/models"
)

// UsersAddCommand creates or updates an account. The password is read from
// the terminal without echo.
func UsersAddCommand(store *auth.Store, args []string) error {
	fs := flag.NewFlagSet("users add", flag.ExitOnError)
	email := fs.String("email", "", "Account email (required)")
	name := fs.String("name", "", "Display name")
	role := fs.String("role", models.RoleRep, "Role: manager or wolf_rep")
	owner := fs.String("owner", "", "Owner value for lead scoping (default: shared pool)")
	repPhone := fs.String("rep-phone", "", "Rep's JustCall number in E.164")
	_ = fs.Parse(args)

	if *email == "" {
		return fmt.Errorf("--email is required")
	}
	// Web login lowercases, so store lowercase.
	*email = strings.ToLower(*email)
	if *role != models.RoleManager && *role != models.RoleRep {
		return fmt.Errorf("--role must be %q or %q", models.RoleManager, models.RoleRep)
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}
	if err := store.SetPassword(*email, password); err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}

	user, err := store.GetUser(*email)
	if err != nil {
		return err
	}
	user.Role = *role
	if *name != "" {
		user.DisplayName = *name
	}
	if *owner != "" {
		user.OwnerValue = *owner
	}
	if *repPhone != "" {
		user.RepPhone = *repPhone
	}
	if err := store.UpsertUser(*user); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	fmt.Printf("Saved %s (%s)\n", user.Email, user.Role)
	return nil
}

// UsersSetPasswordCommand rehashes one account's password.
func UsersSetPasswordCommand(store *auth.Store, args []string) error {
	fs := flag.NewFlagSet("users set-password", flag.ExitOnError)
	email := fs.String("email", "", "Account email (required)")
	_ = fs.Parse(args)

	if *email == "" {
		return fmt.Errorf("--email is required")
	}
	*email = strings.ToLower(*email)
	existing, err := store.GetUser(*email)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("no such user: %s", *email)
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}
	if err := store.SetPassword(*email, password); err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	fmt.Printf("Password updated for %s\n", *email)
	return nil
}

// UsersListCommand prints the user store as a table.
func UsersListCommand(store *auth.Store, args []string) error {
	users, err := store.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		fmt.Println("No users found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tNAME\tROLE\tOWNER\tREP PHONE")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", u.Email, u.DisplayName, u.Role, u.OwnerValue, u.RepPhone)
	}
	return w.Flush()
}

// promptPassword reads the password twice without echo and requires a match.
func promptPassword() (string, error) {
	fmt.Print("Password: ")
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Print("Confirm: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	password := strings.TrimSpace(string(first))
	if password != strings.TrimSpace(string(second)) {
		return "", fmt.Errorf("passwords do not match")
	}
	if len(password) < 8 {
		return "", fmt.Errorf("password must be at least 8 characters")
	}
	return password, nil
}
