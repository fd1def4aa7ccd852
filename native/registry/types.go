package registry

// Asset is the title record for one token of a collection.
type Asset struct {
	Collection [20]byte
	TokenID    uint64
	Owner      [20]byte
	Creator    [20]byte
	Approved   [20]byte
	URI        string
}

// Clone returns a deep copy of the asset.
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	out := *a
	return &out
}
