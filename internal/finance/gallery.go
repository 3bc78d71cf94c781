package finance

import (
	"sync"
	"time"
)

// Figure is one rendered comparison chart.
type Figure struct {
	Name      string
	Title     string
	Caption   string
	Image     []byte
	CreatedAt time.Time
}

// Gallery keeps rendered figures in the order they were added so they can be
// shown together once every currency has been processed.
type Gallery struct {
	mu      sync.Mutex
	figures []Figure
	index   map[string]int
}

func NewGallery() *Gallery {
	return &Gallery{index: map[string]int{}}
}

// Add stores f, replacing a figure with the same name in place.
func (g *Gallery) Add(f Figure) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now()
	}
	if i, ok := g.index[f.Name]; ok {
		g.figures[i] = f
		return
	}
	g.index[f.Name] = len(g.figures)
	g.figures = append(g.figures, f)
}

// Get returns a copy of the named figure.
func (g *Gallery) Get(name string) (Figure, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i, ok := g.index[name]
	if !ok {
		return Figure{}, false
	}
	return copyFigure(g.figures[i]), true
}

// List returns copies of all figures in insertion order.
func (g *Gallery) List() []Figure {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Figure, len(g.figures))
	for i, f := range g.figures {
		out[i] = copyFigure(f)
	}
	return out
}

func (g *Gallery) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.figures)
}

func copyFigure(f Figure) Figure {
	img := make([]byte, len(f.Image))
	copy(img, f.Image)
	f.Image = img
	return f
}
