package billing

import (
	"regexp"
	"strings"
	"testing"
)

func TestNewInvoiceNumber(t *testing.T) {
	pattern := regexp.MustCompile(`^INV-\d+-[0-9a-z]{9}$`)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		number, err := NewInvoiceNumber()
		if err != nil {
			t.Fatalf("error generating invoice number: %v", err)
		}
		if !pattern.MatchString(number) {
			t.Fatalf("invoice number %v does not match expected format", number)
		}
		if seen[number] {
			t.Fatalf("duplicate invoice number %v", number)
		}
		seen[number] = true
	}
}

func TestPixCodeAndPaymentLink(t *testing.T) {
	code := PixCode("aluno@example.com")
	if !strings.HasPrefix(code, "00020126580014BR.GOV.BCB.PIX0136aluno@example.com") {
		t.Fatalf("unexpected pix payload prefix: %v", code)
	}
	if !strings.HasSuffix(code, "6304") {
		t.Fatalf("pix payload missing crc suffix: %v", code)
	}

	link := PaymentLink("INV-123-abcdefghi")
	if link != "https://misterfit.com/pay/INV-123-abcdefghi" {
		t.Fatalf("unexpected payment link: %v", link)
	}
}

func TestNewShareCode(t *testing.T) {
	pattern := regexp.MustCompile(`^[A-Z0-9]{8}$`)

	for i := 0; i < 20; i++ {
		code, err := NewShareCode()
		if err != nil {
			t.Fatalf("error generating share code: %v", err)
		}
		if !pattern.MatchString(code) {
			t.Fatalf("share code %v does not match expected format", code)
		}
	}
}
