package billing

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const paymentBaseUrl = "https://misterfit.com/pay/"

const base36Chars = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomChars(charset string, n int) (string, error) {
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("error generating random sequence: %w", err)
		}
		out[i] = charset[idx.Int64()]
	}
	return string(out), nil
}

// NewInvoiceNumber returns a unique invoice identifier of the form
// INV-<unix millis>-<9 random base36 chars>.
func NewInvoiceNumber() (string, error) {
	suffix, err := randomChars(base36Chars, 9)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d-%s", time.Now().UnixMilli(), suffix), nil
}

// PixCode builds a static BR Code payload keyed on the student email. This is
// a placeholder payload, not a bank-registered PIX key.
func PixCode(studentEmail string) string {
	return "00020126580014BR.GOV.BCB.PIX0136" + studentEmail +
		"5204000053039865802BR5925" + studentEmail +
		"6009SAO PAULO62070503***6304"
}

func PaymentLink(invoiceNumber string) string {
	return paymentBaseUrl + invoiceNumber
}
