// Package repository defines the beneficiary registry interface and errors.
package repository

// Option applies a configuration option to the ShardedRegistry.
type Option func(*ShardedRegistry)

// WithShardCount sets the number of shards in the registry.
func WithShardCount(count int) Option {
	return func(r *ShardedRegistry) {
		if count > 0 {
			r.shardCount = count
		}
	}
}
