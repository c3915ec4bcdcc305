// Package querybuilder assembles MySQL statements from fluent clause calls.
//
// A Builder holds the draft of one statement. Setters such as Select, From,
// Where and Limit accumulate clauses and Build compiles them, appends the
// result to the builder's query log and clears the draft:
//
//	b := querybuilder.New()
//	stmt, err := b.Select().From("users u").Where("u.id", 5).Build()
//	// stmt.SQL:  SELECT u.* FROM users u WHERE `u`.`id`=? LIMIT 0, 1000
//	// stmt.Args: [5]
//
// Values are bound as ? placeholders; Statement.String renders them inline
// for logging. Executing statements is left to an Executor such as *sql.DB,
// which Exec and Query use to mark log entries executed.
package querybuilder
