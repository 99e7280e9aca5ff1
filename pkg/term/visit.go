package term

// DAG is anything that can enumerate the children of a term.
type DAG interface {
	Args(t Term) []Term
}

// Visit calls fn on every term reachable from roots, children before
// parents. Shared subterms are visited exactly once.
func Visit(d DAG, fn func(Term), roots ...Term) {
	type frame struct {
		t    Term
		next int
	}
	seen := make(map[Term]struct{})
	var stack []frame
	for _, root := range roots {
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		stack = append(stack, frame{t: root})
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			args := d.Args(top.t)
			if top.next < len(args) {
				child := args[top.next]
				top.next++
				if _, ok := seen[child]; !ok {
					seen[child] = struct{}{}
					stack = append(stack, frame{t: child})
				}
				continue
			}
			stack = stack[:len(stack)-1]
			fn(top.t)
		}
	}
}

// Collect returns the terms reachable from root satisfying keep, in
// visiting order.
func Collect(d DAG, root Term, keep func(Term) bool) []Term {
	var out []Term
	Visit(d, func(t Term) {
		if keep(t) {
			out = append(out, t)
		}
	}, root)
	return out
}
