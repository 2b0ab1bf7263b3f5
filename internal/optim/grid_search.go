package optim

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/coupled/internal/dynamo"
	"github.com/san-kum/coupled/internal/physics"
)

// Axis is one parameter of the grid and the values it takes. Name is any
// name accepted by physics.Params.SetParam.
type Axis struct {
	Name   string
	Values []float64
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n < 1 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// ParseAxis reads "name=lo:hi:n" or "name=v1,v2,...".
func ParseAxis(s string) (Axis, error) {
	name, rng, ok := strings.Cut(s, "=")
	if !ok || name == "" || rng == "" {
		return Axis{}, fmt.Errorf("%w: axis %q, want name=lo:hi:n or name=v1,v2", dynamo.ErrInvalidConfig, s)
	}

	if parts := strings.Split(rng, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return Axis{}, fmt.Errorf("%w: axis range %q", dynamo.ErrInvalidConfig, rng)
		}
		return Axis{Name: name, Values: Linspace(lo, hi, n)}, nil
	}

	var values []float64
	for _, f := range strings.Split(rng, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Axis{}, fmt.Errorf("%w: axis value %q: %w", dynamo.ErrInvalidConfig, f, err)
		}
		values = append(values, v)
	}
	return Axis{Name: name, Values: values}, nil
}

// Objective scores one parameter set. Lower is better.
type Objective func(ctx context.Context, p physics.Params) (float64, error)

// Point is one evaluated grid node. Err is set when the parameters were
// rejected or the objective failed; such points never win.
type Point struct {
	Values map[string]float64
	Score  float64
	Err    error
}

type GridSearch struct {
	axes    []Axis
	workers int
}

func NewGridSearch(axes ...Axis) (*GridSearch, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("%w: grid search needs at least one axis", dynamo.ErrInvalidConfig)
	}
	for _, a := range axes {
		if len(a.Values) == 0 {
			return nil, fmt.Errorf("%w: axis %s has no values", dynamo.ErrInvalidConfig, a.Name)
		}
	}
	return &GridSearch{axes: axes, workers: runtime.GOMAXPROCS(0)}, nil
}

// Size is the number of grid nodes.
func (g *GridSearch) Size() int {
	n := 1
	for _, a := range g.axes {
		n *= len(a.Values)
	}
	return n
}

// Search evaluates every node of the grid over base concurrently and returns
// the best point plus all points in grid order. It fails only if ctx is
// cancelled or no node could be scored.
func (g *GridSearch) Search(ctx context.Context, base physics.Params, objective Objective) (Point, []Point, error) {
	nodes := make([]map[string]float64, 0, g.Size())
	g.enumerate(0, map[string]float64{}, &nodes)

	points := make([]Point, len(nodes))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i, values := range nodes {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			points[i] = evaluate(gctx, base, values, objective)
			return nil
		})
	}
	err := eg.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return Point{}, nil, fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, err)
	}

	best := Point{Score: math.Inf(1)}
	found := false
	for _, p := range points {
		if p.Err == nil && p.Score < best.Score {
			best, found = p, true
		}
	}
	if !found {
		return Point{}, points, fmt.Errorf("none of %d grid points could be scored", len(points))
	}
	return best, points, nil
}

func (g *GridSearch) enumerate(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.axes) {
		node := make(map[string]float64, len(current))
		for k, v := range current {
			node[k] = v
		}
		*out = append(*out, node)
		return
	}
	axis := g.axes[depth]
	for _, v := range axis.Values {
		current[axis.Name] = v
		g.enumerate(depth+1, current, out)
	}
	delete(current, axis.Name)
}

func evaluate(ctx context.Context, base physics.Params, values map[string]float64, objective Objective) Point {
	pt := Point{Values: values, Score: math.NaN()}

	p := base
	// Apply in a fixed order so "mass" and "mass2" on the same grid resolve
	// the same way every time.
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := p.SetParam(name, values[name]); err != nil {
			pt.Err = err
			return pt
		}
	}

	score, err := objective(ctx, p)
	if err == nil && math.IsNaN(score) {
		err = fmt.Errorf("objective returned NaN")
	}
	pt.Score, pt.Err = score, err
	return pt
}
