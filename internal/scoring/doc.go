// Package scoring serves cluster quality and similarity scores to the review
// wizard from an in-memory copy of the session store. The copy is refreshed
// after every clustering action so ranking always reflects the persisted
// session, while lookups stay cheap enough to call once per cluster pair on
// every list rebuild.
package scoring
