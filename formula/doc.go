/*
Package formula describes weighted 3-CNF problems: a conjunction of clauses of at most three
literals, and a positive weight for each var.

Describing a problem

A problem can be described in several ways:

1. parse the text format (io.Reader), where the first integer is the number of vars,
followed by their weights, followed by the formula itself:

    3 5 3 2 (x1 | !x2 | x3) & (!x1 | x2 | x3)

the programmer can create the Problem by doing:

    pb, err := formula.Parse(f)

Vars are numbered in the lexicographic order of their names.

2. parse a DIMACS CNF stream with an additional weight line:

    p cnf 3 2
    w 5 3 2 0
    1 -2 3 0
    -1 2 3 0

    pb, err := formula.ParseCNF(f)

3. create the equivalent list of list of literals:

    pb, err := formula.New([]int{5, 3, 2}, [][]int{{1, -2, 3}, {-1, 2, 3}})

4. generate a random instance:

    pb, err := formula.Generate(rng, 20, 60, 100)

Evaluating an assignment

An assignment (or genome) is a []bool whose ith value is the binding of the ith var.
Problem.Evaluate evaluates each clause in order and notifies a Tracker of the result,
which is how higher-level solvers accumulate information about an assignment:

    pb.Evaluate(genome, tracker)
*/
package formula
