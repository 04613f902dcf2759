package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Stream delivers successive snapshots of a live query. The channel
// holds at most the latest snapshot: a slow consumer only ever sees
// current state, never a backlog of historical deltas.
type Stream[T any] struct {
	updates chan []T
	cancel  context.CancelFunc
}

// Updates is the snapshot channel. It closes after Stop.
func (s *Stream[T]) Updates() <-chan []T {
	return s.updates
}

// Stop cancels the underlying change stream.
func (s *Stream[T]) Stop() {
	s.cancel()
}

// publish replaces any undelivered snapshot with the newest one.
func (s *Stream[T]) publish(items []T) {
	for {
		select {
		case s.updates <- items:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}

// WatchLatest opens a change stream on coll and re-runs the given
// filtered, sorted, limited query on every backing change, publishing
// the full result set each time. An initial snapshot is published
// before the first change arrives.
func WatchLatest[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, sort bson.D, limit int64) (*Stream[T], error) {
	streamCtx, cancel := context.WithCancel(ctx)

	cs, err := coll.Watch(streamCtx, mongo.Pipeline{})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to watch %s: %w", coll.Name(), err)
	}

	s := &Stream[T]{
		updates: make(chan []T, 1),
		cancel:  cancel,
	}

	go func() {
		defer close(s.updates)
		defer cs.Close(context.Background())

		if items, err := snapshot[T](streamCtx, coll, filter, sort, limit); err == nil {
			s.publish(items)
		} else {
			log.Error().Err(err).Str("collection", coll.Name()).Msg("Failed to load initial snapshot")
			s.publish(nil)
		}

		for cs.Next(streamCtx) {
			items, err := snapshot[T](streamCtx, coll, filter, sort, limit)
			if err != nil {
				log.Error().Err(err).Str("collection", coll.Name()).Msg("Failed to refresh snapshot")
				continue
			}
			s.publish(items)
		}
		if err := cs.Err(); err != nil && streamCtx.Err() == nil {
			log.Error().Err(err).Str("collection", coll.Name()).Msg("Change stream closed")
		}
	}()

	return s, nil
}

func snapshot[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, sort bson.D, limit int64) ([]T, error) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := coll.Find(queryCtx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer cur.Close(queryCtx)

	var items []T
	if err := cur.All(queryCtx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s snapshot: %w", coll.Name(), err)
	}
	return items, nil
}
