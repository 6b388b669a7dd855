package repository

import (
	"testing"
)

func TestDBDialectNameNil(t *testing.T) {
	if got := dbDialectName(nil); got != "sqlite" {
		t.Fatalf("nil db dialect want sqlite got %s", got)
	}
}

func TestLikeOperatorSQLite(t *testing.T) {
	db := newTestDB(t)
	if got := likeOperator(db); got != "LIKE" {
		t.Fatalf("sqlite like operator want LIKE got %s", got)
	}
}
