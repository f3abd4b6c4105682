package models

// Roles a marketplace account can hold.
const (
	RoleUploader = "uploader"
	RoleBuyer    = "buyer"
)

// ValidRole reports whether the provided role is one of the enumerated account roles.
func ValidRole(role string) bool {
	return role == RoleUploader || role == RoleBuyer
}

// User represents an account within the PhotoMart marketplace.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Photo is a marketplace photo as returned by the backend. Metadata fields are
// null until the uploader annotates the photo; HasCompleteMetadata gates
// buyer visibility.
type Photo struct {
	ID                  int     `json:"id"`
	UploaderUsername    string  `json:"uploader_username"`
	Title               *string `json:"title"`
	Description         *string `json:"description"`
	CaptureDate         *string `json:"capture_date"`
	HasCompleteMetadata bool    `json:"has_complete_metadata"`
	PreviewURL          *string `json:"preview_url"`
	CreatedAt           string  `json:"created_at"`
}

// PhotoPage is one page of a paginated photo listing.
type PhotoPage struct {
	Results []Photo `json:"results"`
	Next    *string `json:"next"`
}

// PhotoMetadata carries the uploader-supplied annotation for a photo. All
// three fields must be present before the photo becomes buyer-visible.
type PhotoMetadata struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CaptureDate string `json:"capture_date"`
}

// Download variants offered by the backend.
const (
	DownloadWatermarked = "watermarked"
	DownloadHQ          = "hq"
)
