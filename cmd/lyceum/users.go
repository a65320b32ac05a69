package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lyceum-academy/lyceum/internal/auth"
	"github.com/lyceum-academy/lyceum/internal/config"
	"github.com/lyceum-academy/lyceum/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	devAdminEmail    = "admin@lyceum.com"
	devAdminPassword = "admin123"
	devAdminName     = "System Admin"

	generatedPasswordLength = 24
	userCommandTimeout      = 15 * time.Second
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage Lyceum user accounts.",
}

// passwordFlags are the ways a command can receive a new password.
type passwordFlags struct {
	password string
	stdin    bool
	generate bool
}

func (p *passwordFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.password, "password", "", "Password (discouraged; prefer --password-stdin)")
	cmd.Flags().BoolVar(&p.stdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().BoolVar(&p.generate, "generate-password", false, "Generate a random password and print it")
}

// resolve returns the password and whether it was generated. With no flag
// set it prompts twice on a terminal.
func (p passwordFlags) resolve(cmd *cobra.Command, stdin io.Reader) (string, bool, error) {
	set := 0
	for _, on := range []bool{p.password != "", p.stdin, p.generate} {
		if on {
			set++
		}
	}
	if set > 1 {
		return "", false, errors.New("--password, --password-stdin and --generate-password are mutually exclusive")
	}

	switch {
	case p.generate:
		password, err := auth.GeneratePassword(generatedPasswordLength)
		return password, err == nil, err
	case p.password != "":
		return p.password, false, nil
	case p.stdin:
		password, err := readPasswordLine(stdin)
		if err != nil {
			return "", false, err
		}
		if password == "" {
			return "", false, errors.New("password is empty")
		}
		return password, false, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", false, errors.New("no password provided (use --password, --password-stdin, or --generate-password)")
	}
	cmd.Print("Password: ")
	first, err := term.ReadPassword(fd)
	cmd.Println()
	if err != nil {
		return "", false, err
	}
	if len(first) == 0 {
		return "", false, errors.New("password is empty")
	}
	cmd.Print("Confirm password: ")
	second, err := term.ReadPassword(fd)
	cmd.Println()
	if err != nil {
		return "", false, err
	}
	if string(first) != string(second) {
		return "", false, errors.New("passwords do not match")
	}
	return string(first), false, nil
}

func readPasswordLine(r io.Reader) (string, error) {
	if f, ok := r.(*os.File); ok {
		info, err := f.Stat()
		if err != nil {
			return "", err
		}
		if info.Mode()&os.ModeCharDevice != 0 {
			return "", errors.New("stdin is a terminal; use --password or omit to prompt")
		}
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		return "", scanner.Err()
	}
	return strings.TrimRight(scanner.Text(), "\r\n"), nil
}

// withQueries opens a short-lived pool for a single maintenance command.
func withQueries(fn func(ctx context.Context, q *store.Queries) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), userCommandTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, store.New(pool))
}

func findUser(ctx context.Context, q *store.Queries, email string) (store.User, error) {
	u, err := q.GetUserByEmail(ctx, email)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.User{}, fmt.Errorf("user not found: %s", email)
	}
	return u, err
}

func requireEmail(raw string) (string, error) {
	email := auth.NormalizeEmail(raw)
	if email == "" {
		return "", errors.New("--email is required")
	}
	return email, nil
}

var (
	bootstrapEmail    string
	bootstrapName     string
	bootstrapPassword passwordFlags
)

var bootstrapAdminCmd = &cobra.Command{
	Use:   "bootstrap-admin",
	Short: "Create the first admin user (no-op if an admin already exists).",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := requireEmail(bootstrapEmail)
		if err != nil {
			return err
		}
		password, generated, err := bootstrapPassword.resolve(cmd, cmd.InOrStdin())
		if err != nil {
			return err
		}
		return withQueries(func(ctx context.Context, q *store.Queries) error {
			admins, err := q.CountAdmins(ctx)
			if err != nil {
				return err
			}
			if admins > 0 {
				cmd.Println("admin user already exists; nothing to do")
				return nil
			}
			if _, err := q.GetUserByEmail(ctx, email); err == nil {
				return fmt.Errorf("user already exists: %s", email)
			} else if !errors.Is(err, pgx.ErrNoRows) {
				return err
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			if _, err := q.CreateUser(ctx, store.CreateUserParams{
				Name:         strings.TrimSpace(bootstrapName),
				Email:        email,
				PasswordHash: hash,
				Role:         auth.RoleAdmin,
				IsVerified:   true,
			}); err != nil {
				return err
			}

			cmd.Printf("created admin user: %s\n", email)
			if generated {
				cmd.Printf("generated password: %s\n", password)
			}
			return nil
		})
	},
}

var (
	resetEmail     string
	resetMustReset bool
	resetPassword  passwordFlags
)

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Set a new password for an existing user.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := requireEmail(resetEmail)
		if err != nil {
			return err
		}
		password, generated, err := resetPassword.resolve(cmd, cmd.InOrStdin())
		if err != nil {
			return err
		}
		return withQueries(func(ctx context.Context, q *store.Queries) error {
			u, err := findUser(ctx, q, email)
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			if err := q.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				ID:                u.ID,
				PasswordHash:      hash,
				MustResetPassword: resetMustReset,
			}); err != nil {
				return err
			}
			cmd.Printf("password updated: %s\n", email)
			if generated {
				cmd.Printf("generated password: %s\n", password)
			}
			return nil
		})
	},
}

var verifyEmail string

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Mark a user's email as verified so they can sign in.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := requireEmail(verifyEmail)
		if err != nil {
			return err
		}
		return withQueries(func(ctx context.Context, q *store.Queries) error {
			u, err := findUser(ctx, q, email)
			if err != nil {
				return err
			}
			if u.IsVerified {
				cmd.Printf("already verified: %s\n", email)
				return nil
			}
			if err := q.MarkUserVerified(ctx, u.ID); err != nil {
				return err
			}
			cmd.Printf("verified: %s\n", email)
			return nil
		})
	},
}

var (
	promoteEmail string
	promoteRole  string
)

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Change a user's role (Admin, Staff or Student).",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		email, err := requireEmail(promoteEmail)
		if err != nil {
			return err
		}
		role := auth.NormalizeRole(promoteRole)
		if role == "" {
			return fmt.Errorf("unknown role %q", promoteRole)
		}
		return withQueries(func(ctx context.Context, q *store.Queries) error {
			u, err := findUser(ctx, q, email)
			if err != nil {
				return err
			}
			if u.Role == role {
				cmd.Printf("%s is already %s\n", email, role)
				return nil
			}
			if err := q.UpdateUserRole(ctx, u.ID, role); err != nil {
				return err
			}
			cmd.Printf("%s: %s -> %s\n", email, u.Role, role)
			return nil
		})
	},
}

var resetDevAdminCmd = &cobra.Command{
	Use:   "reset-dev-admin",
	Short: "Create or reset " + devAdminEmail + " with the local development password.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.HashPassword(devAdminPassword)
		if err != nil {
			return err
		}
		return withQueries(func(ctx context.Context, q *store.Queries) error {
			u, err := q.GetUserByEmail(ctx, devAdminEmail)
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				if _, err := q.CreateUser(ctx, store.CreateUserParams{
					Name:         devAdminName,
					Email:        devAdminEmail,
					PasswordHash: hash,
					Role:         auth.RoleAdmin,
					IsVerified:   true,
				}); err != nil {
					return err
				}
				cmd.Printf("created %s\n", devAdminEmail)
			case err != nil:
				return err
			default:
				if err := q.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{ID: u.ID, PasswordHash: hash}); err != nil {
					return err
				}
				if err := q.UpdateUserRole(ctx, u.ID, auth.RoleAdmin); err != nil {
					return err
				}
				if !u.IsVerified {
					if err := q.MarkUserVerified(ctx, u.ID); err != nil {
						return err
					}
				}
				cmd.Printf("updated existing user %s\n", devAdminEmail)
			}
			cmd.Printf("email: %s\npassword: %s\n", devAdminEmail, devAdminPassword)
			return nil
		})
	},
}

func init() {
	usersCmd.AddCommand(bootstrapAdminCmd, resetPasswordCmd, verifyCmd, promoteCmd, resetDevAdminCmd)

	bootstrapAdminCmd.Flags().StringVar(&bootstrapEmail, "email", "", "Email address for the admin user")
	bootstrapAdminCmd.Flags().StringVar(&bootstrapName, "name", "Administrator", "Display name for the admin user")
	bootstrapPassword.register(bootstrapAdminCmd)
	_ = bootstrapAdminCmd.MarkFlagRequired("email")

	resetPasswordCmd.Flags().StringVar(&resetEmail, "email", "", "Email address of the user")
	resetPasswordCmd.Flags().BoolVar(&resetMustReset, "must-reset", false, "Require the user to change the password at next sign-in")
	resetPassword.register(resetPasswordCmd)
	_ = resetPasswordCmd.MarkFlagRequired("email")

	verifyCmd.Flags().StringVar(&verifyEmail, "email", "", "Email address of the user")
	_ = verifyCmd.MarkFlagRequired("email")

	promoteCmd.Flags().StringVar(&promoteEmail, "email", "", "Email address of the user")
	promoteCmd.Flags().StringVar(&promoteRole, "role", auth.RoleAdmin, "New role")
	_ = promoteCmd.MarkFlagRequired("email")
}
