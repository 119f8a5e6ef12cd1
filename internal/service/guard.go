package service

// AuthorizeOwner reports whether actorID may mutate a resource owned by
// ownerID. Ownership is the only permission tier.
func AuthorizeOwner(actorID, ownerID string) bool {
	return actorID != "" && actorID == ownerID
}
