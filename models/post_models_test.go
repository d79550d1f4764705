package models

import (
	"encoding/json"
	"testing"
)

func TestReactionsRoundTrip(t *testing.T) {
	cases := []struct {
		in    string
		shape ReactionShape
		likes int
		out   string
	}{
		{`42`, ReactionShapeBare, 42, `42`},
		{`0`, ReactionShapeBare, 0, `0`},
		{`{"likes":7,"dislikes":2}`, ReactionShapeStructured, 7, `{"likes":7,"dislikes":2}`},
		{`{"likes":0,"dislikes":0}`, ReactionShapeStructured, 0, `{"likes":0,"dislikes":0}`},
	}
	for i, c := range cases {
		var r Reactions
		if err := json.Unmarshal([]byte(c.in), &r); err != nil {
			t.Fatalf("case %d unmarshal error: %v", i, err)
		}
		if r.Shape != c.shape {
			t.Fatalf("case %d expected shape %v, got %v", i, c.shape, r.Shape)
		}
		if r.Likes() != c.likes {
			t.Fatalf("case %d expected %d likes, got %d", i, c.likes, r.Likes())
		}
		out, err := json.Marshal(r)
		if err != nil {
			t.Fatalf("case %d marshal error: %v", i, err)
		}
		if string(out) != c.out {
			t.Fatalf("case %d expected %s after round trip, got %s", i, c.out, out)
		}
	}
}

func TestReactionsAdjustPreservesShape(t *testing.T) {
	bare := Reactions{Shape: ReactionShapeBare, Count: 3}
	bare.Adjust(1)
	bare.Adjust(-1)
	if bare.Likes() != 3 || bare.Shape != ReactionShapeBare {
		t.Fatalf("bare toggle pair changed state: %+v", bare)
	}

	structured := Reactions{Shape: ReactionShapeStructured, LikeCount: 5, DislikeCount: 1}
	structured.Adjust(1)
	if structured.LikeCount != 6 || structured.DislikeCount != 1 {
		t.Fatalf("structured adjust touched wrong field: %+v", structured)
	}
	structured.Adjust(-1)
	if structured.LikeCount != 5 {
		t.Fatalf("structured toggle pair did not restore count: %+v", structured)
	}
}

func TestIdentitySummary(t *testing.T) {
	id := Identity{ID: 9, Username: "emilys", FirstName: "Emily", LastName: "Johnson", Image: "img"}
	u := id.Summary()
	if u.Name != "Emily Johnson" || u.ID != 9 || u.Username != "emilys" {
		t.Fatalf("unexpected summary: %+v", u)
	}
}
