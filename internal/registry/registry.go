// Package registry maps template ids to the blueprint implementations new
// tokens are cloned from.
package registry

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/XTakerDAO/token-factory-sub001/internal/apperrors"
	"github.com/XTakerDAO/token-factory-sub001/internal/token"
)

const (
	BasicLabel    = "BASIC_ERC20"
	FeaturedLabel = "FEATURED_ERC20"
)

var (
	BasicTemplateID    = crypto.Keccak256Hash([]byte(BasicLabel))
	FeaturedTemplateID = crypto.Keccak256Hash([]byte(FeaturedLabel))
)

// Template binds a template id to an implementation address.
type Template struct {
	ID             common.Hash    `json:"id"`
	Implementation common.Address `json:"implementation"`
}

// SelectTemplate picks the default template for cfg: the featured one as
// soon as any optional capability is requested.
func SelectTemplate(cfg token.Config) common.Hash {
	if cfg.Features().Any() {
		return FeaturedTemplateID
	}
	return BasicTemplateID
}

// TemplateID derives a template id from a human label.
func TemplateID(label string) common.Hash {
	return crypto.Keccak256Hash([]byte(label))
}

// Registry is an immutable template map; mutators return a new Registry.
type Registry struct {
	templates map[common.Hash]common.Address
}

func New(templates ...Template) Registry {
	r := Registry{templates: make(map[common.Hash]common.Address, len(templates))}
	for _, t := range templates {
		r.templates[t.ID] = t.Implementation
	}
	return r
}

func (r Registry) Get(id common.Hash) (common.Address, bool) {
	impl, ok := r.templates[id]
	return impl, ok
}

func (r Registry) Len() int { return len(r.templates) }

// List returns template ids in byte order.
func (r Registry) List() []common.Hash {
	ids := make([]common.Hash, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

func (r Registry) Templates() []Template {
	ids := r.List()
	out := make([]Template, len(ids))
	for i, id := range ids {
		out[i] = Template{ID: id, Implementation: r.templates[id]}
	}
	return out
}

// Put adds or replaces the template under id.
func (r Registry) Put(id common.Hash, impl common.Address) (Registry, error) {
	if impl == (common.Address{}) {
		return r, apperrors.New(apperrors.CodeZeroAddress, "implementation must not be the zero address")
	}
	if id == (common.Hash{}) {
		return r, apperrors.New(apperrors.CodeInvalidInput, "template id must not be empty")
	}
	next := r.clone()
	next.templates[id] = impl
	return next, nil
}

// Remove deletes the template under id.
func (r Registry) Remove(id common.Hash) (Registry, error) {
	if _, ok := r.templates[id]; !ok {
		return r, apperrors.ErrTemplateNotFound
	}
	next := r.clone()
	delete(next.templates, id)
	return next, nil
}

func (r Registry) clone() Registry {
	out := Registry{templates: make(map[common.Hash]common.Address, len(r.templates)+1)}
	for k, v := range r.templates {
		out.templates[k] = v
	}
	return out
}
