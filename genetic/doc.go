/*
Package genetic looks for a high-weight assignment of a weighted 3-CNF problem with a genetic algorithm.

Each entity of a population is an assignment of the problem's vars. Entities satisfying all clauses
are always preferred to the other ones; among them, those with the highest weight are preferred.
When no entity satisfies all clauses, the ones satisfying the most clauses are preferred.

Solving a problem

Once a formula.Problem is built, the programmer creates a Solver with a Config:

    cfg := genetic.DefaultConfig()
    cfg.Selection = genetic.RankSelection
    s, err := genetic.New(pb, cfg)
    if err != nil {
        // Invalid problem or configuration
    }
    res, err := s.Run()

res.Outcome indicates whether an assignment satisfying all clauses was found. If not, res.Model
is the best partial solution found, i.e the one satisfying the most clauses.
Not finding a solution is not an error: the search is not complete.

Each new best entity is logged, at debug level, on s.Log. An Observer can be set to follow
the evolution, generation after generation, and a Reporter to output the result of Run.

Reproducibility

All random draws come from a single source, seeded with cfg.Seed. Two solvers with the same
problem, the same configuration and the same non-zero seed produce the same results.
*/
package genetic
