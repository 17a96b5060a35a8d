package main

import (
	"github.com/spf13/cobra"
)

func newMintCmd(root *rootOptions) *cobra.Command {
	var mint, amount string

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint whole tokens of a recorded mint to the keypair",
		Long: `Mints into the keypair's associated token account, creating it when
missing. The mint must have been created through this tool with a
persistent store, since its decimals are read from the token record.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, kp, err := root.open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			record, err := a.Service.MintTokens(ctx, kp, mint, amount)
			if err != nil {
				return err
			}
			logger.Printf("Minted %s to %s (%s)", record.Amount, record.TokenAccount, record.Signature)
			return printJSON(cmd, record)
		},
	}

	cmd.Flags().StringVar(&mint, "mint", "", "Mint address")
	cmd.Flags().StringVar(&amount, "amount", "", "Whole tokens to mint, e.g. 1.5")
	cmd.MarkFlagRequired("mint")
	cmd.MarkFlagRequired("amount")

	return cmd
}
