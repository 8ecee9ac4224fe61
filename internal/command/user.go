package command

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/datapad-dev/datapad/internal/sec"
	"github.com/datapad-dev/datapad/internal/storage"
	"github.com/datapad-dev/datapad/internal/storage/db"
)

func userCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Credential administration commands",
	}
	cmd.AddCommand(
		userAddCommand(),
		userRemoveCommand(),
		userUpdateCommand(),
		userListCommand(),
		userCheckCommand(),
	)
	return cmd
}

func userAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME",
		Short: "Add user",
		Long: "Creates a credential entry for the provided username and password. Passwords\n" +
			"may be provided via stdin or through the interactive prompt.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			_, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			name := args[0]
			if _, err := store.GetUserByName(cmd.Context(), name); err == nil {
				return fmt.Errorf("user %q already exists, use `user update`", name)
			} else if !errors.Is(err, storage.ErrNotFound) {
				return err
			}

			if passwd, err := prompt("password: ", true); err != nil {
				return err
			} else if hash, err := sec.HashPassword(passwd); err != nil {
				return err
			} else if err = store.UpsertUser(cmd.Context(), db.User{
				Name:         name,
				PasswordHash: hash,
			}); err != nil {
				return err
			}

			logger.InfoContext(cmd.Context(), "created user", slog.String("name", name))
			return nil
		},
	}
}

func userRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove user",
		Long: "Permanently deletes the user and their sessions. " +
			"This operation is permanent and irreversible.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			_, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			name := args[0]
			logger = logger.With(slog.String("name", name))
			user, err := store.GetUserByName(cmd.Context(), name)
			if err != nil {
				return err
			}
			resp, err := prompt("Are you sure you want to remove this user? [y|N] ", false)
			if !bytes.Equal(resp, []byte{'y'}) || err != nil {
				logger.InfoContext(cmd.Context(), "aborted user removal")
				return err
			}
			if err = store.DeleteUser(cmd.Context(), user.ID); err != nil {
				return err
			}
			logger.InfoContext(cmd.Context(), "user removed")
			return nil
		},
	}
}

func userUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update NAME",
		Short: "Update user password",
		Long:  "Replaces the stored password for an existing user.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			_, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			name := args[0]
			user, err := store.GetUserByName(cmd.Context(), name)
			if err != nil {
				return err
			}

			if passwd, err := prompt("new password: ", true); err != nil {
				return err
			} else if hash, err := sec.HashPassword(passwd); err != nil {
				return err
			} else {
				user.PasswordHash = hash
				if err = store.UpsertUser(cmd.Context(), user); err != nil {
					return err
				}
			}

			logger.InfoContext(cmd.Context(), "updated user", slog.String("name", name))
			return nil
		},
	}
}

func userListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (runErr error) {
			_, _, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			users, err := store.ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			for _, user := range users {
				cmd.Println(user.Name)
			}
			return nil
		},
	}
}

func userCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check NAME",
		Short: "Check user credentials",
		Long: "Verifies a password against the stored hash without touching any session\n" +
			"state. Exits non-zero when the credentials do not match.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (runErr error) {
			_, logger, store, err := loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					runErr = errors.Join(runErr, err)
				}
			}()

			name := args[0]
			user, err := store.GetUserByName(cmd.Context(), name)
			if err != nil {
				return err
			}
			passwd, err := prompt("password: ", true)
			if err != nil {
				return err
			}
			if err := sec.ComparePassword(passwd, user.PasswordHash); err != nil {
				return errors.New("credentials do not match")
			}
			logger.InfoContext(cmd.Context(), "credentials ok", slog.String("name", name))
			return nil
		},
	}
}
