package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"scanorder/internal/logger"
	"scanorder/internal/order"
	"scanorder/internal/validation"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [text-file]",
	Short: "Check text for an allow-listed purchase order number",
	Long: `Read text from a file (or stdin when no file is given) and report whether
its first "PO...:" line carries an allow-listed purchase order number.

With --order, a simulated sales order id is generated as the form would.`,
	Example: `  echo "PO: 12345" | scanorder verify
  scanorder ocr scan.png | scanorder verify --order`,
	Args: cobra.MaximumNArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().Bool("order", false, "Also generate a sales order id")
}

func runVerify(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("verify")
	withOrder, _ := cmd.Flags().GetBool("order")

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open text file: %w", err)
		}
		defer f.Close()
		in = f
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read text: %w", err)
	}
	text := string(data)

	po, found := validation.ExtractPO(text)
	valid := validation.VerifyPO(text)

	log.Debug().
		Bool("found", found).
		Str("po_number", po).
		Bool("valid", valid).
		Msg("Verified purchase order")

	out := cmd.OutOrStdout()
	switch {
	case !found:
		fmt.Fprintln(out, "po: not found")
	default:
		fmt.Fprintf(out, "po: %s\n", po)
	}
	fmt.Fprintf(out, "valid: %t\n", valid)
	if withOrder {
		fmt.Fprintf(out, "sales order: %s\n", order.NewOrderID())
	}
	return nil
}
