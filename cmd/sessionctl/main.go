// sessionctl drives the client session core from the command line: login,
// register, logout, profile edits and route-gate inspection against the
// credential file and the configured backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/servicelens/mobile-core/internal/core/domain"
	"github.com/servicelens/mobile-core/internal/core/ports"
	"github.com/servicelens/mobile-core/internal/core/service"
	"github.com/servicelens/mobile-core/internal/infrastructure/authapi"
	"github.com/servicelens/mobile-core/internal/infrastructure/config"
	"github.com/servicelens/mobile-core/internal/infrastructure/store"
	"github.com/servicelens/mobile-core/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	client := authapi.NewClient(authapi.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
	}, log)
	auth := service.NewAuthenticator(client, cfg.Store.TestAccounts, log)
	credentials := store.NewFileStore(cfg.Store.Path)
	manager := service.NewSessionManager(auth, client, credentials, log)

	ctx := context.Background()
	if err := manager.Initialize(ctx); err != nil {
		fail("restore session: %v", err)
	}

	switch cmd := os.Args[1]; cmd {
	case "login":
		if len(os.Args) != 4 {
			fail("usage: sessionctl login <email> <password>")
		}
		if err := manager.Login(ctx, os.Args[2], os.Args[3]); err != nil {
			fail("login: %v", err)
		}
		printUser(manager.Snapshot().User)

	case "register":
		input := parseRegister(os.Args[2:])
		if err := manager.Register(ctx, input); err != nil {
			fail("register: %v", err)
		}
		printUser(manager.Snapshot().User)

	case "logout":
		if err := manager.Logout(ctx); err != nil {
			fail("logout: %v", err)
		}
		fmt.Println("logged out")

	case "whoami":
		snap := manager.Snapshot()
		if snap.User == nil {
			fmt.Println("not logged in")
			return
		}
		printUser(snap.User)

	case "surface":
		fmt.Println(manager.Surface())

	case "refresh":
		if err := manager.RefreshSession(ctx); err != nil {
			fail("refresh: %v", err)
		}
		fmt.Println("token refreshed")

	case "sync-profile":
		if err := manager.SyncProfile(ctx); err != nil {
			fail("sync profile: %v", err)
		}
		printUser(manager.Snapshot().User)

	case "update-profile":
		update := parseProfileUpdate(os.Args[2:])
		if err := manager.UpdateProfile(ctx, update); err != nil {
			fail("update profile: %v", err)
		}
		printUser(manager.Snapshot().User)

	default:
		usage()
		os.Exit(2)
	}
}

func parseRegister(args []string) ports.RegisterInput {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	role := fs.String("role", domain.RoleUser, "account role")
	_ = fs.Parse(args)

	return ports.RegisterInput{
		Email:       *email,
		Password:    *password,
		FullName:    *name,
		PhoneNumber: *phone,
		Role:        *role,
	}
}

func parseProfileUpdate(args []string) domain.ProfileUpdate {
	fs := flag.NewFlagSet("update-profile", flag.ExitOnError)
	name := fs.String("name", "", "full name")
	phone := fs.String("phone", "", "phone number")
	_ = fs.Parse(args)

	var update domain.ProfileUpdate
	if *name != "" {
		update.FullName = name
	}
	if *phone != "" {
		update.PhoneNumber = phone
	}
	return update
}

func printUser(user *domain.User) {
	raw, _ := json.MarshalIndent(user, "", "  ")
	fmt.Println(string(raw))
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: sessionctl <command>

commands:
  login <email> <password>
  register -email <email> -password <pw> [-name <name>] [-phone <phone>] [-role <role>]
  logout
  whoami
  surface
  refresh
  sync-profile
  update-profile [-name <name>] [-phone <phone>]`)
}
