package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/photomart/cli/internal/api"
	"github.com/photomart/cli/internal/models"
	"github.com/photomart/cli/internal/session"
)

func runLogin(ctx context.Context, deps *dependencies, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("username", "", "account username")
	password := fs.String("password", "", "account password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		value, err := promptLine("Username: ")
		if err != nil {
			return err
		}
		*username = value
	}
	if *password == "" {
		value, err := promptLine("Password: ")
		if err != nil {
			return err
		}
		*password = value
	}

	user, err := deps.store.Login(ctx, *username, *password)
	if err != nil {
		if errors.Is(err, api.ErrAuthentication) {
			return fmt.Errorf("login failed: %s", err)
		}
		return err
	}

	fmt.Printf("Signed in as %s (%s).\n", user.Username, user.Role)
	return nil
}

func runRegister(ctx context.Context, deps *dependencies, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	input := api.RegisterInput{}
	fs.StringVar(&input.Username, "username", "", "account username")
	fs.StringVar(&input.Email, "email", "", "account email")
	fs.StringVar(&input.Password, "password", "", "account password")
	fs.StringVar(&input.Password2, "password2", "", "password confirmation")
	fs.StringVar(&input.Role, "role", "", "account role: uploader or buyer")
	fs.StringVar(&input.FirstName, "first-name", "", "first name (optional)")
	fs.StringVar(&input.LastName, "last-name", "", "last name (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := deps.store.Register(ctx, input)
	if err != nil {
		if errors.Is(err, session.ErrValidation) {
			return err
		}
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			return fmt.Errorf("registration failed: %s", apiErr)
		}
		return err
	}

	fmt.Printf("Account created. Signed in as %s (%s).\n", user.Username, user.Role)
	return nil
}

func runLogout(deps *dependencies) error {
	deps.store.Logout()
	fmt.Println("Signed out.")
	return nil
}

func runWhoami(ctx context.Context, deps *dependencies) error {
	snapshot := deps.store.Restore(ctx)
	if !snapshot.Authenticated() {
		return errors.New("not signed in; run `photomart login`")
	}

	user := snapshot.User
	fmt.Printf("%s (%s)\n", user.Username, user.Role)
	if name := strings.TrimSpace(user.FirstName + " " + user.LastName); name != "" {
		fmt.Printf("Name:  %s\n", name)
	}
	fmt.Printf("Email: %s\n", user.Email)

	tokens, err := deps.tokens.Get()
	if err == nil && tokens.Access != "" {
		if expiry, ok := session.TokenExpiry(tokens.Access); ok {
			fmt.Printf("Access token expires %s\n", expiry.Local().Format(time.RFC1123))
		}
	}
	return nil
}

// requireUser rehydrates the session and fails when nobody is signed in.
func requireUser(ctx context.Context, deps *dependencies) (models.User, error) {
	snapshot := deps.store.Restore(ctx)
	if !snapshot.Authenticated() {
		return models.User{}, errors.New("not signed in; run `photomart login`")
	}
	return *snapshot.User, nil
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
