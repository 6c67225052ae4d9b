// Package state implements the deterministic replay engine: folding a
// chain's blocks, in topological order, into the shared stacks, names,
// and distributed random generators every party converges on.
package state

import (
	"github.com/rawblock/pbmx/chain"
	"github.com/rawblock/pbmx/group"
	"github.com/rawblock/pbmx/keys"
	"github.com/rawblock/pbmx/mask"
	"github.com/rawblock/pbmx/vtmf"
)

// maskKey derives a comparable map key from a mask's canonical encoding,
// since group.Element wraps a pointer and is not safe to compare or hash
// by value.
func maskKey(m mask.Mask) [64]byte {
	var k [64]byte
	copy(k[:32], m.C0.Encode(nil))
	copy(k[32:], m.C1.Encode(nil))
	return k
}

// secretEntry accumulates the combined unmask share for a single mask,
// and which parties have contributed to it.
type secretEntry struct {
	share       vtmf.SecretShare
	parties     []keys.Fingerprint
	contributed map[keys.Fingerprint]bool
}

// StackMap holds every stack a replay has accepted, indexed by content
// id and by the human-readable names assigned to them, plus the
// per-mask unmask shares parties have published.
type StackMap struct {
	byId    map[chain.Id]mask.Stack
	byName  map[string]chain.Id
	secrets map[[64]byte]*secretEntry
	private map[[64]byte]mask.Mask
}

// NewStackMap starts an empty stack map.
func NewStackMap() *StackMap {
	return &StackMap{
		byId:    make(map[chain.Id]mask.Stack),
		byName:  make(map[string]chain.Id),
		secrets: make(map[[64]byte]*secretEntry),
		private: make(map[[64]byte]mask.Mask),
	}
}

// clone returns an independent copy of m, so a rejected block's staged
// inserts never reach the original map.
func (m *StackMap) clone() *StackMap {
	cp := NewStackMap()
	for k, v := range m.byId {
		cp.byId[k] = v
	}
	for k, v := range m.byName {
		cp.byName[k] = v
	}
	for k, v := range m.secrets {
		e := *v
		e.contributed = make(map[keys.Fingerprint]bool, len(v.contributed))
		for p := range v.contributed {
			e.contributed[p] = true
		}
		e.parties = append([]keys.Fingerprint(nil), v.parties...)
		cp.secrets[k] = &e
	}
	for k, v := range m.private {
		cp.private[k] = v
	}
	return cp
}

// Len returns the number of distinct stacks in the map.
func (m *StackMap) Len() int { return len(m.byId) }

// Insert records stack under its content id, ignoring a duplicate.
func (m *StackMap) Insert(stack mask.Stack) chain.Id {
	id := chain.StackId(stack)
	if _, ok := m.byId[id]; !ok {
		m.byId[id] = stack
	}
	return id
}

// Contains reports whether a stack with the given id is known.
func (m *StackMap) Contains(id chain.Id) bool {
	_, ok := m.byId[id]
	return ok
}

// SetName binds name to id, overwriting any previous binding for name.
func (m *StackMap) SetName(id chain.Id, name string) { m.byName[name] = id }

// ByID looks up a stack by its content id.
func (m *StackMap) ByID(id chain.Id) (mask.Stack, bool) {
	s, ok := m.byId[id]
	return s, ok
}

// ByName looks up a stack by its bound name.
func (m *StackMap) ByName(name string) (mask.Stack, bool) {
	id, ok := m.byName[name]
	if !ok {
		return nil, false
	}
	return m.ByID(id)
}

// IsName reports whether name is bound to a stack.
func (m *StackMap) IsName(name string) bool {
	_, ok := m.byName[name]
	return ok
}

// Names returns every bound stack name.
func (m *StackMap) Names() []string {
	out := make([]string, 0, len(m.byName))
	for n := range m.byName {
		out = append(out, n)
	}
	return out
}

// AddSecretShare folds owner's unmask shares for stack id's tokens into
// the combined secret for each token, ignoring a party that has already
// contributed to a given token.
func (m *StackMap) AddSecretShare(id chain.Id, owner keys.Fingerprint, shares []vtmf.SecretShare) {
	stack, ok := m.byId[id]
	if !ok {
		return
	}
	for i, tok := range stack {
		if i >= len(shares) {
			break
		}
		k := maskKey(tok)
		e, ok := m.secrets[k]
		if !ok {
			e = &secretEntry{
				share:       vtmf.SecretShare{D: group.Identity()},
				contributed: make(map[keys.Fingerprint]bool),
			}
			m.secrets[k] = e
		}
		if e.contributed[owner] {
			continue
		}
		e.share = vtmf.SecretShare{D: e.share.D.Add(shares[i].D)}
		e.parties = append(e.parties, owner)
		e.contributed[owner] = true
	}
}

// Secret returns the combined unmask share accumulated for a single mask.
func (m *StackMap) Secret(tok mask.Mask) (vtmf.SecretShare, bool) {
	e, ok := m.secrets[maskKey(tok)]
	if !ok {
		return vtmf.SecretShare{}, false
	}
	return e.share, true
}

// AddPrivateSecret records this party's own private unmask share for a
// mask, obtained off-chain (e.g. by drawing the original token).
func (m *StackMap) AddPrivateSecret(tok, secret mask.Mask) { m.private[maskKey(tok)] = secret }

// PrivateSecret looks up a private unmask share for a mask.
func (m *StackMap) PrivateSecret(tok mask.Mask) (mask.Mask, bool) {
	s, ok := m.private[maskKey(tok)]
	return s, ok
}
