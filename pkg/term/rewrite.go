package term

// Rewrite rebuilds root bottom-up. For every reachable term, fn
// receives the term together with its already rewritten children and
// returns the replacement; returning NoTerm keeps the default, which
// is the original head over the rewritten children.
func Rewrite(p *Pool, root Term, fn func(t Term, args []Term) Term) Term {
	done := make(map[Term]Term)
	Visit(p, func(t Term) {
		orig := p.Args(t)
		args := make([]Term, len(orig))
		changed := false
		for i, a := range orig {
			args[i] = done[a]
			changed = changed || args[i] != a
		}
		out := NoTerm
		if fn != nil {
			out = fn(t, args)
		}
		if out == NoTerm {
			out = t
			if changed {
				out = p.Rebuild(t, args)
			}
		}
		done[t] = out
	}, root)
	return done[root]
}

// RewriteDistincts replaces every (distinct t1 ... tn) reachable from
// root by the conjunction of (not (= ti tj)) for all i < j.
func RewriteDistincts(p *Pool, root Term) Term {
	return Rewrite(p, root, func(t Term, args []Term) Term {
		if !p.IsDisequality(t) {
			return NoTerm
		}
		diseqs := make([]Term, 0, len(args)*(len(args)-1)/2)
		for i := 0; i < len(args); i++ {
			for j := i + 1; j < len(args); j++ {
				diseqs = append(diseqs, p.MkNot(p.MkEq(args[i], args[j])))
			}
		}
		return p.MkAnd(diseqs...)
	})
}
