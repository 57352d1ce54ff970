package locale

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestTranslate(t *testing.T) {
	id := NewPrinter(language.Indonesian)
	en := NewPrinter(language.English)

	assert.Equal(t, "Sesi Anda telah berakhir", Translate(id, MsgSessionExpired))
	assert.Equal(t, MsgSessionExpired, Translate(en, MsgSessionExpired))
	assert.Equal(t, "raw server text 100%", Translate(id, "raw server text 100%"))
}

func TestParse(t *testing.T) {
	assert.Equal(t, language.Indonesian, Parse(""))
	assert.Equal(t, language.Indonesian, Parse("not a tag!"))
	assert.Equal(t, language.English, Parse("en"))
}

func TestFormatIDR(t *testing.T) {
	en := NewPrinter(language.English)
	assert.Equal(t, "Rp 4,500", FormatIDR(en, decimal.NewFromInt(4500)))
	assert.Equal(t, "Rp 0", FormatIDR(en, decimal.Zero))
	assert.Equal(t, "Rp 1,000", FormatIDR(en, decimal.RequireFromString("999.5")))

	id := NewPrinter(language.Indonesian)
	assert.Contains(t, FormatIDR(id, decimal.NewFromInt(4500)), "Rp 4")
	assert.Contains(t, FormatIDR(id, decimal.NewFromInt(-250)), "Rp -250")
}
