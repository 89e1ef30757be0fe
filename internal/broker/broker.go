// Package broker turns accepted store mutations into push updates for open
// subscriptions. Clients subscribe to one of three topic shapes — the post
// list of a community, the comment list of a post, the reply list of a
// comment — and receive the refreshed result set whenever a mutation could
// have changed it.
package broker

import (
	"context"
	"log"
	"sync"
	"time"

	"whisper-feed/internal/database"
	"whisper-feed/internal/models"

	"github.com/google/uuid"
)

// TopicKind names the three subscribable query shapes.
type TopicKind string

const (
	TopicCommunityPosts TopicKind = "community_posts"
	TopicPostComments   TopicKind = "post_comments"
	TopicCommentReplies TopicKind = "comment_replies"
)

// Topic identifies one live query: a kind plus the parent entity it hangs
// off.
type Topic struct {
	Kind TopicKind `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

func PostsOf(communityID uuid.UUID) Topic {
	return Topic{Kind: TopicCommunityPosts, ID: communityID}
}

func CommentsOf(postID uuid.UUID) Topic {
	return Topic{Kind: TopicPostComments, ID: postID}
}

func RepliesOf(commentID uuid.UUID) Topic {
	return Topic{Kind: TopicCommentReplies, ID: commentID}
}

// Update is one pushed snapshot of a topic's result set. Exactly one of the
// payload slices is set, matching the topic kind.
type Update struct {
	Topic    Topic             `json:"topic"`
	Posts    []*models.Post    `json:"posts,omitempty"`
	Comments []*models.Comment `json:"comments,omitempty"`
	Replies  []*models.Reply   `json:"replies,omitempty"`
}

// Subscription is one open live query held by one subscriber. The owner
// must call Close when done; the registry never drops subscriptions on its
// own.
type Subscription struct {
	ID    uuid.UUID
	Topic Topic

	updates   chan *Update
	registry  *Registry
	closeOnce sync.Once
}

// Updates is the stream of snapshots for this subscription. The channel is
// closed after Close or registry shutdown.
func (s *Subscription) Updates() <-chan *Update {
	return s.updates
}

// Close tears the subscription down. No further updates are delivered once
// Close returns the registry's acknowledgment path.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		select {
		case s.registry.unregister <- s:
		case <-s.registry.done:
		}
	})
}

// Registry owns every open subscription, keyed by (topic, subscription id).
// A single goroutine processes registrations and mutation events in arrival
// order, which preserves the store's write order within each topic's stream.
type Registry struct {
	store    database.Store
	pageSize int

	subs map[Topic]map[uuid.UUID]*Subscription

	register   chan *Subscription
	unregister chan *Subscription
	events     chan Topic
	done       chan struct{}
	stopOnce   sync.Once
}

const (
	eventQueueSize  = 256
	updateQueueSize = 8
	evalTimeout     = 5 * time.Second
)

func NewRegistry(store database.Store, pageSize int) *Registry {
	return &Registry{
		store:      store,
		pageSize:   pageSize,
		subs:       make(map[Topic]map[uuid.UUID]*Subscription),
		register:   make(chan *Subscription),
		unregister: make(chan *Subscription),
		events:     make(chan Topic, eventQueueSize),
		done:       make(chan struct{}),
	}
}

// Subscribe opens a live query on the topic. The registry's Run loop must
// be started before the first Subscribe.
func (r *Registry) Subscribe(topic Topic) *Subscription {
	sub := &Subscription{
		ID:       uuid.New(),
		Topic:    topic,
		updates:  make(chan *Update, updateQueueSize),
		registry: r,
	}

	select {
	case r.register <- sub:
	case <-r.done:
		close(sub.updates)
	}
	return sub
}

// Publish announces that a mutation may have changed the topic's result
// set. Accepted mutations call this after the store write succeeds.
func (r *Registry) Publish(topic Topic) {
	select {
	case r.events <- topic:
	case <-r.done:
	}
}

// Shutdown stops the Run loop and closes every open subscription stream.
func (r *Registry) Shutdown() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
}

// Run processes registrations, teardowns and mutation events until
// Shutdown. Meant to run on its own goroutine.
func (r *Registry) Run() {
	log.Println("Fan-out registry started.")
	for {
		select {
		case sub := <-r.register:
			if _, ok := r.subs[sub.Topic]; !ok {
				r.subs[sub.Topic] = make(map[uuid.UUID]*Subscription)
			}
			r.subs[sub.Topic][sub.ID] = sub
			// Seed the subscriber with the current result set.
			r.deliver(sub.Topic, map[uuid.UUID]*Subscription{sub.ID: sub})

		case sub := <-r.unregister:
			if topicSubs, ok := r.subs[sub.Topic]; ok {
				if _, stillOpen := topicSubs[sub.ID]; stillOpen {
					delete(topicSubs, sub.ID)
					close(sub.updates)
					if len(topicSubs) == 0 {
						delete(r.subs, sub.Topic)
					}
				}
			}

		case topic := <-r.events:
			if topicSubs, ok := r.subs[topic]; ok && len(topicSubs) > 0 {
				r.deliver(topic, topicSubs)
			}

		case <-r.done:
			for topic, topicSubs := range r.subs {
				for _, sub := range topicSubs {
					close(sub.updates)
				}
				delete(r.subs, topic)
			}
			log.Println("Fan-out registry stopped.")
			return
		}
	}
}

// deliver re-evaluates the topic's query and pushes the snapshot to the
// given subscriptions.
func (r *Registry) deliver(topic Topic, targets map[uuid.UUID]*Subscription) {
	update, err := r.evaluate(topic)
	if err != nil {
		log.Printf("Fan-out evaluation failed for topic %s/%s: %v", topic.Kind, topic.ID, err)
		return
	}

	for _, sub := range targets {
		select {
		case sub.updates <- update:
		default:
			// Slow subscriber: drop its oldest queued snapshot so the
			// newest state still gets through. Snapshots are
			// self-contained, so skipping an intermediate one never
			// reorders what the subscriber observes.
			select {
			case <-sub.updates:
			default:
			}
			select {
			case sub.updates <- update:
			default:
				log.Printf("Fan-out buffer still full for subscription %s", sub.ID)
			}
		}
	}
}

func (r *Registry) evaluate(topic Topic) (*Update, error) {
	ctx, cancel := context.WithTimeout(context.Background(), evalTimeout)
	defer cancel()

	update := &Update{Topic: topic}
	switch topic.Kind {
	case TopicCommunityPosts:
		posts, _, err := r.store.ListPosts(ctx, topic.ID, nil, r.pageSize)
		if err != nil {
			return nil, err
		}
		update.Posts = posts
	case TopicPostComments:
		comments, err := r.store.ListComments(ctx, topic.ID)
		if err != nil {
			return nil, err
		}
		update.Comments = comments
	case TopicCommentReplies:
		replies, err := r.store.ListReplies(ctx, topic.ID)
		if err != nil {
			return nil, err
		}
		update.Replies = replies
	}

	return update, nil
}
