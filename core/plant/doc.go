// Package plant models the steel plant roster: plant records, their
// lifecycle status, and the cycle-relative age used to pick closure
// candidates. Plants are never deleted; closing a plant flips its status
// and sets its end year.
package plant
