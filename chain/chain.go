package chain

import (
	"fmt"

	"github.com/rawblock/pbmx/keys"
	"github.com/rawblock/pbmx/pbmxerr"
	"golang.org/x/sync/errgroup"
)

// Chain is the DAG of blocks a party accumulates as it receives them from
// other parties, independent of delivery order.
type Chain struct {
	blocks map[Id]*Block
	heads  []Id
	roots  []Id
	links  map[Id][]Id
}

// New starts an empty chain.
func New() *Chain {
	return &Chain{
		blocks: make(map[Id]*Block),
		links:  make(map[Id][]Id),
	}
}

// Count returns the number of blocks in the chain.
func (c *Chain) Count() int { return len(c.blocks) }

// IsEmpty reports whether the chain has no blocks.
func (c *Chain) IsEmpty() bool { return len(c.blocks) == 0 }

// IsMerged reports whether the chain has exactly one head, meaning every
// party's contributions have converged onto a single frontier.
func (c *Chain) IsMerged() bool { return len(c.heads) == 1 }

// IsIncomplete reports whether any block's parent has not yet been
// received, i.e. some acknowledged parent id (a key of links) is absent
// from blocks.
func (c *Chain) IsIncomplete() bool {
	for parent := range c.links {
		if _, ok := c.blocks[parent]; !ok {
			return true
		}
	}
	return false
}

// Heads returns the ids of the chain's current frontier blocks.
func (c *Chain) Heads() []Id { return append([]Id(nil), c.heads...) }

// Roots returns the ids of the chain's blocks with no acknowledged
// parents.
func (c *Chain) Roots() []Id { return append([]Id(nil), c.roots...) }

// Block looks up a block by id.
func (c *Chain) Block(id Id) (*Block, bool) {
	b, ok := c.blocks[id]
	return b, ok
}

// BuildBlock starts a Builder that acknowledges every current head, the
// normal way a party extends the chain with its own new block.
func (c *Chain) BuildBlock() *Builder {
	bu := NewBuilder()
	for _, h := range c.heads {
		bu.Acknowledge(h)
	}
	return bu
}

// AddBlock inserts b into the chain, updating heads, roots, and the
// parent-to-child link index. It rejects a block whose id is already
// present.
func (c *Chain) AddBlock(b *Block) error {
	id := b.Id()
	if _, dup := c.blocks[id]; dup {
		return fmt.Errorf("chain: block %s already present: %w", id, pbmxerr.ErrInvalidInput)
	}

	acks := b.Acks()
	if len(acks) == 0 {
		c.roots = append(c.roots, id)
	}
	for _, ack := range acks {
		c.heads = removeId(c.heads, ack)
		c.links[ack] = append(c.links[ack], id)
	}

	if len(c.links[id]) == 0 {
		c.heads = append(c.heads, id)
	}

	c.blocks[id] = b
	return nil
}

func removeId(ids []Id, target Id) []Id {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// Blocks returns every block in the chain in a topological order: a
// block never precedes one of the blocks it acknowledges. Ties (blocks
// with no dependency relation) are broken by insertion into the ready
// queue, i.e. roughly by which parent became fully satisfied first.
func (c *Chain) Blocks() []*Block {
	incoming := make(map[Id]int, len(c.blocks))
	ready := append([]Id(nil), c.roots...)
	out := make([]*Block, 0, len(c.blocks))

	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]

		b, ok := c.blocks[id]
		if !ok {
			continue
		}
		out = append(out, b)

		for _, child := range c.links[id] {
			n, seeded := incoming[child]
			if !seeded {
				if cb, ok := c.blocks[child]; ok {
					n = len(cb.Acks())
				}
			}
			n--
			incoming[child] = n
			if n == 0 {
				ready = append(ready, child)
			}
		}
	}
	return out
}

// VerifyAll checks every block's signature against pki concurrently,
// returning the first error encountered (a block whose signer key is
// known but whose signature is invalid). Blocks with an Indeterminate
// signer are not treated as errors, since the caller may simply not have
// received that party's key yet.
func (c *Chain) VerifyAll(pki map[keys.Fingerprint]keys.PublicKey) error {
	blocks := c.Blocks()
	var g errgroup.Group
	for _, b := range blocks {
		b := b
		g.Go(func() error {
			if b.IsValid(pki) == Invalid {
				return fmt.Errorf("chain: block %s: %w", b.Id(), pbmxerr.ErrBadProof)
			}
			return nil
		})
	}
	return g.Wait()
}
