package domain

// Account kinds as they appear on the wire (authorModel / senderModel fields).
const (
	KindIndividual = "individual_user"
	KindNGO        = "ngo"
)

// ValidKind reports whether k names a known account kind.
func ValidKind(k string) bool {
	return k == KindIndividual || k == KindNGO
}
