package main

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"token-launchpad/internal/domain"
	"token-launchpad/internal/launchpad"
)

func newCreateCmd(root *rootOptions) *cobra.Command {
	var (
		draft      domain.DraftToken
		decimals   string
		supply     string
		imagePath  string
		mintAmount string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a Token-2022 mint with metadata",
		Long: `Uploads the image and metadata JSON, then creates the mint with a
metadata pointer and on-chain metadata in one transaction. The keypair
becomes mint and update authority.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if draft.Decimals, err = launchpad.ParseDecimals(decimals); err != nil {
				return err
			}
			if draft.InitialSupply, err = launchpad.ParseSupply(supply); err != nil {
				return err
			}
			if imagePath != "" {
				if draft.Image, err = readImage(imagePath); err != nil {
					return err
				}
			}

			ctx := cmd.Context()
			a, kp, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			token, err := a.Service.CreateToken(ctx, kp, draft)
			if err != nil {
				return err
			}
			logger.Printf("Created %s (%s)", token.Mint, token.Signature)

			out := struct {
				Token *domain.TokenRecord `json:"token"`
				Mint  *domain.MintRecord  `json:"mint,omitempty"`
			}{Token: token}

			if mintAmount != "" {
				out.Mint, err = a.Service.MintTokens(ctx, kp, token.Mint, mintAmount)
				if err != nil {
					printJSON(cmd, out)
					return fmt.Errorf("token created, mint failed: %w", err)
				}
				logger.Printf("Minted %s to %s (%s)", out.Mint.Amount, out.Mint.TokenAccount, out.Mint.Signature)
			}
			return printJSON(cmd, out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&draft.Name, "name", "", "Token name")
	f.StringVar(&draft.Symbol, "symbol", "", "Token symbol")
	f.StringVar(&draft.Description, "description", "", "Token description")
	f.StringVar(&decimals, "decimals", "0", "Decimal places (0-255)")
	f.StringVar(&supply, "supply", "0", "Initial supply to record with the token")
	f.StringVar(&imagePath, "image", "", "Path to the token image")
	f.StringVar(&mintAmount, "mint-amount", "", "Whole tokens to mint to the keypair after creation")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("symbol")
	cmd.MarkFlagRequired("image")

	return cmd
}

// readImage loads an image and guesses its content type from the extension,
// then from the bytes.
func readImage(path string) (domain.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Image{}, fmt.Errorf("read image: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return domain.Image{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}
