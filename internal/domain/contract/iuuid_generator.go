package contract

// IUUIDGenerator generates record identifiers.
type IUUIDGenerator interface {
	NewUUID() string
}
