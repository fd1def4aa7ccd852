package registry

import (
	"errors"
	"fmt"
	"strings"

	"nftmarket/core/events"
	marketerrors "nftmarket/core/errors"
	"nftmarket/core/types"
)

var (
	errNilState       = errors.New("registry: state not configured")
	errZeroCollection = errors.New("registry: collection address required")
	errZeroOwner      = errors.New("registry: owner address required")
)

type registryState interface {
	RegistryAssetGet(collection [20]byte, tokenID uint64) (*Asset, bool, error)
	RegistryAssetPut(asset *Asset) error
	RegistryOperatorGet(collection, owner, operator [20]byte) (bool, error)
	RegistryOperatorPut(collection, owner, operator [20]byte, approved bool) error
	RegistryNextTokenID(collection [20]byte) (uint64, error)
}

// Registry is the reference asset title store. Each collection is addressed
// by a 20-byte reference and numbers its tokens from 1.
type Registry struct {
	state   registryState
	emitter events.Emitter
}

// NewRegistry binds a registry to state with a no-op emitter.
func NewRegistry(state registryState) *Registry {
	return &Registry{state: state, emitter: events.NoopEmitter{}}
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

func (r *Registry) emit(evt *types.Event) {
	if r == nil || r.emitter == nil || evt == nil {
		return
	}
	r.emitter.Emit(registryEvent{evt: evt})
}

func (r *Registry) ready() error {
	if r == nil || r.state == nil {
		return errNilState
	}
	return nil
}

func (r *Registry) load(collection [20]byte, tokenID uint64) (*Asset, error) {
	asset, ok, err := r.state.RegistryAssetGet(collection, tokenID)
	if err != nil {
		return nil, err
	}
	if !ok || asset == nil {
		return nil, fmt.Errorf("registry: %s/%d: %w", events.FormatAddress(collection), tokenID, marketerrors.ErrNoSuchAsset)
	}
	return asset, nil
}

// Mint creates the next token of collection, owned and created by owner.
func (r *Registry) Mint(collection, owner [20]byte, uri string) (*Asset, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	if collection == ([20]byte{}) {
		return nil, errZeroCollection
	}
	if owner == ([20]byte{}) {
		return nil, errZeroOwner
	}
	id, err := r.state.RegistryNextTokenID(collection)
	if err != nil {
		return nil, err
	}
	asset := &Asset{
		Collection: collection,
		TokenID:    id,
		Owner:      owner,
		Creator:    owner,
		URI:        strings.TrimSpace(uri),
	}
	if err := r.state.RegistryAssetPut(asset); err != nil {
		return nil, err
	}
	r.emit(NewMintedEvent(asset))
	return asset.Clone(), nil
}

// Asset returns the full title record.
func (r *Registry) Asset(collection [20]byte, tokenID uint64) (*Asset, error) {
	if err := r.ready(); err != nil {
		return nil, err
	}
	asset, err := r.load(collection, tokenID)
	if err != nil {
		return nil, err
	}
	return asset.Clone(), nil
}

// OwnerOf returns the current holder of the token.
func (r *Registry) OwnerOf(collection [20]byte, tokenID uint64) ([20]byte, error) {
	asset, err := r.Asset(collection, tokenID)
	if err != nil {
		return [20]byte{}, err
	}
	return asset.Owner, nil
}

// CreatorOf returns the account that minted the token.
func (r *Registry) CreatorOf(collection [20]byte, tokenID uint64) ([20]byte, error) {
	asset, err := r.Asset(collection, tokenID)
	if err != nil {
		return [20]byte{}, err
	}
	return asset.Creator, nil
}

// TokenURI returns the metadata URI recorded at mint time.
func (r *Registry) TokenURI(collection [20]byte, tokenID uint64) (string, error) {
	asset, err := r.Asset(collection, tokenID)
	if err != nil {
		return "", err
	}
	return asset.URI, nil
}

// Approve lets spender move a single token on behalf of its owner. Approving
// the zero address clears the approval.
func (r *Registry) Approve(collection [20]byte, tokenID uint64, owner, spender [20]byte) error {
	if err := r.ready(); err != nil {
		return err
	}
	asset, err := r.load(collection, tokenID)
	if err != nil {
		return err
	}
	if asset.Owner != owner {
		return fmt.Errorf("registry: approve: %w", marketerrors.ErrNotOwner)
	}
	asset.Approved = spender
	if err := r.state.RegistryAssetPut(asset); err != nil {
		return err
	}
	r.emit(NewApprovalEvent(asset))
	return nil
}

// SetApprovalForAll grants or revokes operator rights over every token owner
// holds in collection.
func (r *Registry) SetApprovalForAll(collection, owner, operator [20]byte, approved bool) error {
	if err := r.ready(); err != nil {
		return err
	}
	if owner == operator {
		return nil
	}
	if err := r.state.RegistryOperatorPut(collection, owner, operator, approved); err != nil {
		return err
	}
	r.emit(NewOperatorEvent(collection, owner, operator, approved))
	return nil
}

// IsAuthorized reports whether operator may move the token out of owner's
// custody. It is false when owner no longer holds the token.
func (r *Registry) IsAuthorized(collection [20]byte, tokenID uint64, owner, operator [20]byte) (bool, error) {
	if err := r.ready(); err != nil {
		return false, err
	}
	asset, err := r.load(collection, tokenID)
	if err != nil {
		return false, err
	}
	if asset.Owner != owner {
		return false, nil
	}
	if operator == owner || (asset.Approved != ([20]byte{}) && asset.Approved == operator) {
		return true, nil
	}
	return r.state.RegistryOperatorGet(collection, owner, operator)
}

// Transfer moves custody from one holder to another and clears any single
// token approval.
func (r *Registry) Transfer(collection [20]byte, tokenID uint64, from, to [20]byte) error {
	if err := r.ready(); err != nil {
		return err
	}
	if to == ([20]byte{}) {
		return errZeroOwner
	}
	asset, err := r.load(collection, tokenID)
	if err != nil {
		return err
	}
	if asset.Owner != from {
		return fmt.Errorf("registry: transfer %s/%d from %s: %w",
			events.FormatAddress(collection), tokenID, events.FormatAddress(from), marketerrors.ErrNotOwner)
	}
	asset.Owner = to
	asset.Approved = [20]byte{}
	if err := r.state.RegistryAssetPut(asset); err != nil {
		return err
	}
	r.emit(NewTransferredEvent(collection, tokenID, from, to))
	return nil
}
