package usecasecontract

// IValidator checks user supplied profile fields.
type IValidator interface {
	ValidateUsername(username string) error
	ValidateURL(raw string) error
}
