// Package orderbook holds resting asks and bids for energy certificates and
// matches incoming orders against them.
//
// Asks and bids are kept in price levels: asks ascending, bids descending.
// Inside a level orders queue by sequence. An incoming order walks the
// opposite side in that order while prices cross, skipping orders whose
// product is incompatible, and trades at the resting order's price.
//
// Every mutation is written through to a Store before memory changes, so a
// book can be rebuilt with Restore.
package orderbook
