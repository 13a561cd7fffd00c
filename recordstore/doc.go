// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package recordstore provides a real-time document store over SQL.

Records are JSON documents addressed by collection and key. The store offers
the primitives of a hosted real-time database and nothing more:

	Get / List          one-time reads
	Push                create under a generated key (uuid)
	Set / Update        unconditional writes (Update merges, nil removes a field)
	Delete              remove
	Transaction         conditional read-modify-write on one record
	Subscribe           full-collection push after every commit

# Conditional Transactions

Every record carries a version. Transaction reads the record, hands a copy
to the caller's function, and writes the result with
"WHERE version = <read version>". If another writer got there first the
update touches no rows and the whole cycle runs again, up to 25 attempts:

	snap, err := store.Transaction(ctx, "menuItems", id, func(cur recordstore.Document) (recordstore.Document, error) {
		if cur == nil {
			return nil, ErrItemNotFound
		}
		next := cur.Clone()
		next["assigned_to"] = uid
		return next, nil
	})

There are no cross-record transactions. Callers that touch two records must
order their writes and compensate on failure.
*/
package recordstore
