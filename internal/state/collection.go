package state

import "github.com/abelbrown/minescope/internal/model"

// AddTentative appends article to the collection immediately and returns a
// token for ConfirmAdd or RollbackAdd. Adding an article that is already
// present adds a second entry; the collection does not deduplicate.
func (s *Store) AddTentative(article model.Article) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collectionID++
	a := model.CloneArticles([]model.Article{article})[0]
	s.collection = append(s.collection, collectionEntry{
		article:  a,
		adding:   true,
		addToken: s.collectionID,
	})
	return s.collectionID
}

// ConfirmAdd settles the entry added under token.
func (s *Store) ConfirmAdd(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.collection {
		e := &s.collection[i]
		if e.adding && e.addToken == token {
			e.adding = false
			return
		}
	}
}

// RollbackAdd removes the entry added under token, leaving the rest of the
// collection exactly as it was.
func (s *Store) RollbackAdd(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.collection {
		e := s.collection[i]
		if e.adding && e.addToken == token {
			s.collection = append(s.collection[:i], s.collection[i+1:]...)
			return
		}
	}
}

// RemoveTentative hides every entry with id and returns a token for
// ConfirmRemove or RollbackRemove. Removing an id that is not present
// changes nothing.
func (s *Store) RemoveTentative(id model.ArticleID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.collectionID++
	for i := range s.collection {
		e := &s.collection[i]
		if e.article.ID == id && !e.removing {
			e.removing = true
			e.removeToken = s.collectionID
		}
	}
	return s.collectionID
}

// ConfirmRemove drops the entries hidden under token.
func (s *Store) ConfirmRemove(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.collection[:0]
	for _, e := range s.collection {
		if e.removing && e.removeToken == token {
			continue
		}
		kept = append(kept, e)
	}
	s.collection = kept
}

// RollbackRemove restores the entries hidden under token in their original
// positions.
func (s *Store) RollbackRemove(token uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.collection {
		e := &s.collection[i]
		if e.removing && e.removeToken == token {
			e.removing = false
			e.removeToken = 0
		}
	}
}

// Collection returns the visible collection: settled entries plus tentative
// additions, minus tentative removals.
func (s *Store) Collection() []model.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visibleCollectionLocked()
}

func (s *Store) visibleCollectionLocked() []model.Article {
	out := make([]model.Article, 0, len(s.collection))
	for _, e := range s.collection {
		if e.removing {
			continue
		}
		out = append(out, e.article)
	}
	return model.CloneArticles(out)
}

// PendingCollectionChanges reports how many collection mutations are still
// awaiting backend confirmation.
func (s *Store) PendingCollectionChanges() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pendingLocked()
}

func (s *Store) pendingLocked() int {
	tokens := make(map[uint64]struct{})
	for _, e := range s.collection {
		if e.adding {
			tokens[e.addToken] = struct{}{}
		}
		if e.removing {
			tokens[e.removeToken] = struct{}{}
		}
	}
	return len(tokens)
}
