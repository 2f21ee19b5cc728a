// Command admin creates an administrator account directly in the database.
// It is meant for bootstrapping a fresh deployment before any user exists.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/term"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/server/auth"
	"github.com/dmitrijs2005/taskhub/internal/server/config"
	"github.com/dmitrijs2005/taskhub/internal/server/models"
	"github.com/dmitrijs2005/taskhub/internal/server/repositories/repomanager"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	cfg := config.LoadConfig()

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Enter admin name")
	name, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)

	fmt.Println("Enter admin email")
	email, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	email = strings.TrimSpace(email)

	fmt.Println("Enter password")
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}

	hasher := auth.NewPasswordHasher(cfg.HashCost)
	hash, err := hasher.Hash(string(password))
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer db.Close()

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	user := &models.User{
		Name:         name,
		Username:     email,
		Email:        email,
		PasswordHash: hash,
		Role:         common.RoleAdmin,
	}

	created, err := m.Users(db).Create(ctx, user)
	if err != nil {
		return fmt.Errorf("error creating admin: %w", err)
	}

	fmt.Printf("Admin user created: %s (%s)\n", created.ID, created.Email)
	return nil
}
