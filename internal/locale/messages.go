package locale

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys. The English text doubles as the key and as the fallback
// translation.
const (
	MsgSupplierRequired = "Supplier is required"
	MsgItemRequired     = "Item is required"
	MsgQuantityInvalid  = "Quantity must be greater than 0"
	MsgCartEmpty        = "Cart must not be empty"
	MsgItemNotFound     = "Item not found"
	MsgPriceInvalid     = "Price must not be negative"
	MsgFieldRequired    = "This field is required"
	MsgFieldEmail       = "Must be a valid email address"
	MsgFieldInvalid     = "Value is invalid"
	MsgInvalidRequest   = "The request body is invalid"

	MsgGenericError   = "An error occurred while processing the request"
	MsgSessionExpired = "Your session has expired"
	MsgLoginAgain     = "Please log in again"
	MsgAccessDenied   = "Access denied"
	MsgNoPermission   = "You do not have permission to access this resource"
	MsgNotFound       = "Resource not found"
	MsgNotAvailable   = "The requested data is not available"
	MsgServerError    = "Server error"
	MsgServerRetry    = "An error occurred on the server. Please try again later."
	MsgCannotConnect  = "Cannot connect to the server"
	MsgCheckServer    = "Make sure the server is running and reachable"
	MsgTimeout        = "The request timed out"

	MsgErrorTitle      = "An error occurred"
	MsgSuccessTitle    = "Success"
	MsgOrderCreated    = "Purchase order created with total %s"
	MsgOrderFailed     = "Failed to create purchase order"
	MsgLoadFailed      = "Failed to load data"
	MsgConfirmTitle    = "Confirmation"
	MsgConfirmDelete   = "Delete %s?"
	MsgLoginSuccess    = "Login successful"
	MsgInvalidResponse = "The server response is invalid. Token not found."
)

var indonesian = map[string]string{
	MsgSupplierRequired: "Supplier harus dipilih",
	MsgItemRequired:     "Item harus dipilih",
	MsgQuantityInvalid:  "Quantity harus lebih dari 0",
	MsgCartEmpty:        "Keranjang tidak boleh kosong",
	MsgItemNotFound:     "Item tidak ditemukan",
	MsgPriceInvalid:     "Harga tidak boleh negatif",
	MsgFieldRequired:    "Field ini wajib diisi",
	MsgFieldEmail:       "Harus berupa alamat email yang valid",
	MsgFieldInvalid:     "Nilai tidak valid",
	MsgInvalidRequest:   "Format permintaan tidak valid",

	MsgGenericError:   "Terjadi kesalahan saat memproses permintaan",
	MsgSessionExpired: "Sesi Anda telah berakhir",
	MsgLoginAgain:     "Silakan login kembali",
	MsgAccessDenied:   "Akses ditolak",
	MsgNoPermission:   "Anda tidak memiliki izin untuk mengakses resource ini",
	MsgNotFound:       "Resource tidak ditemukan",
	MsgNotAvailable:   "Data yang diminta tidak tersedia",
	MsgServerError:    "Kesalahan server",
	MsgServerRetry:    "Terjadi kesalahan pada server. Silakan coba lagi nanti.",
	MsgCannotConnect:  "Tidak dapat terhubung ke server",
	MsgCheckServer:    "Pastikan server berjalan dan dapat diakses",
	MsgTimeout:        "Permintaan melebihi batas waktu",

	MsgErrorTitle:      "Terjadi Kesalahan",
	MsgSuccessTitle:    "Berhasil",
	MsgOrderCreated:    "Purchase order berhasil dibuat dengan total %s",
	MsgOrderFailed:     "Gagal membuat purchase order",
	MsgLoadFailed:      "Gagal memuat data",
	MsgConfirmTitle:    "Konfirmasi",
	MsgConfirmDelete:   "Hapus %s?",
	MsgLoginSuccess:    "Login berhasil",
	MsgInvalidResponse: "Response dari server tidak valid. Token tidak ditemukan.",
}

func init() {
	for key, msg := range indonesian {
		_ = message.SetString(language.Indonesian, key, msg)
	}
}

// Parse returns the language tag for a config value, defaulting to
// Indonesian.
func Parse(lang string) language.Tag {
	if lang == "" {
		return language.Indonesian
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.Indonesian
	}
	return tag
}

// NewPrinter returns a printer bound to the package catalog.
func NewPrinter(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}

// Translate looks up a message key and returns it verbatim when the catalog
// has no entry, so text passed through from the API survives untouched.
func Translate(p *message.Printer, msg string) string {
	return p.Sprintf(strings.ReplaceAll(msg, "%", "%%"))
}
