package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"

	transactiondomain "github.com/smallbiznis/leadfuel/internal/transaction/domain"
)

var typeLabels = map[transactiondomain.Type]string{
	transactiondomain.TypeUnlockEmail: "Email",
	transactiondomain.TypeUnlockPhone: "Phone",
	transactiondomain.TypeEnrichment:  "Enrichment",
	transactiondomain.TypeExport:      "Export",
	transactiondomain.TypeListAdd:     "List Add",
}

const unlockPrefix = "unlock_"

// TypeLabel returns the display label for a transaction type.
func TypeLabel(t transactiondomain.Type) string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return formatLabel(string(t))
}

func formatLabel(raw string) string {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), unlockPrefix)
	words := strings.FieldsFunc(raw, func(r rune) bool { return r == '_' })
	for i, word := range words {
		first, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(word[size:])
	}
	return strings.Join(words, " ")
}
