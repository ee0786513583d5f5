package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/cardforge/cardforge-go/internal/service"
)

var (
	shareOwner   string
	userQuestion string
	userAnswer   string
	userPassword string
)

var sharesCmd = &cobra.Command{
	Use:   "shares",
	Short: "Manage share links",
}

var sharesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a share link with zeroed counters",
	RunE:  runSharesCreate,
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user credential fields",
}

var usersSetCmd = &cobra.Command{
	Use:   "set <user-id>",
	Short: "Set a user's security question, answer and password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersSet,
}

func init() {
	sharesCreateCmd.Flags().StringVar(&shareOwner, "owner", "", "owner user id (required)")
	_ = sharesCreateCmd.MarkFlagRequired("owner")
	sharesCmd.AddCommand(sharesCreateCmd)
	rootCmd.AddCommand(sharesCmd)

	usersSetCmd.Flags().StringVar(&userQuestion, "question", "", "security question (required)")
	usersSetCmd.Flags().StringVar(&userAnswer, "answer", "", "security answer (required)")
	usersSetCmd.Flags().StringVar(&userPassword, "password", "", "initial password (required)")
	_ = usersSetCmd.MarkFlagRequired("question")
	_ = usersSetCmd.MarkFlagRequired("answer")
	_ = usersSetCmd.MarkFlagRequired("password")
	usersCmd.AddCommand(usersSetCmd)
	rootCmd.AddCommand(usersCmd)
}

func runSharesCreate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	shareID := uuid.NewString()

	if err := dbClient.CreateShare(ctx, shareID, shareOwner); err != nil {
		return fmt.Errorf("create share: %w", err)
	}

	fmt.Printf("Created share %s\n", shareID)
	return nil
}

func runUsersSet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	userID := args[0]

	answerHash, err := service.HashAnswer(userAnswer)
	if err != nil {
		return fmt.Errorf("hash answer: %w", err)
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(userPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := dbClient.UpsertUser(ctx, userID, userQuestion, answerHash, string(passwordHash)); err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	fmt.Printf("Updated credentials for %s\n", userID)
	return nil
}
