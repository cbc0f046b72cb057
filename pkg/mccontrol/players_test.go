package mccontrol

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParsePlayerList(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []PlayerRecord
	}{
		{
			name: "vanilla with afk marker",
			in:   "There are 2/20 players online: Alice, Bob [AFK]",
			want: []PlayerRecord{{Name: "Alice"}, {Name: "Bob", AFK: true}},
		},
		{
			name: "empty input",
			in:   "",
			want: []PlayerRecord{},
		},
		{
			name: "no colon",
			in:   "Unknown command",
			want: []PlayerRecord{},
		},
		{
			name: "nobody online",
			in:   "There are 0 of a max of 20 players online: ",
			want: []PlayerRecord{},
		},
		{
			name: "group prefixes on separate lines",
			in:   "There are 3 out of maximum 50 players online.\ndefault: Alice, §cBob\r\nadmins: Carol",
			want: []PlayerRecord{{Name: "Alice"}, {Name: "§cBob"}, {Name: "Carol"}},
		},
		{
			name: "afk marker case insensitive and repeated",
			in:   "online: [afk]Dave[AfK] , Eve",
			want: []PlayerRecord{{Name: "Dave", AFK: true}, {Name: "Eve"}},
		},
		{
			name: "separator runs produce no empty names",
			in:   "players:,,Alice,\n\n,Bob,",
			want: []PlayerRecord{{Name: "Alice"}, {Name: "Bob"}},
		},
		{
			name: "header wording ignored",
			in:   "Online (2): Alice, Bob",
			want: []PlayerRecord{{Name: "Alice"}, {Name: "Bob"}},
		},
		{
			name: "colon inside name is cut",
			in:   "online: weird:name",
			want: []PlayerRecord{{Name: "name"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePlayerList(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePlayerList(%q) mismatch (-want +got):\n%s", tt.in, diff)
			}
		})
	}
}

func TestParseOpsList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"There are 1 ops: Alice", []string{"Alice"}},
		{"", []string{}},
		{"Unknown or incomplete command, see below for error", []string{}},
		{"ops: Alice, alice,\r\nBob , Alice", []string{"Alice", "alice", "Bob", "Alice"}},
		{"ops: group: Alice", []string{"group: Alice"}},
	}

	for _, tt := range tests {
		got := ParseOpsList(tt.in)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("ParseOpsList(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestResolveOperatorsColorFallback(t *testing.T) {
	players := []PlayerRecord{{Name: "§cAlice"}, {Name: "Bob"}}

	got := ResolveOperators(players, nil)
	want := []PlayerRecord{{Name: "§cAlice", IsOp: true}, {Name: "Bob"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, got, ResolveOperators(players, []string{}))
}

func TestResolveOperatorsCaseInsensitive(t *testing.T) {
	players := []PlayerRecord{{Name: "Alice"}, {Name: "Bob"}}

	got := ResolveOperators(players, []string{"alice"})
	want := []PlayerRecord{{Name: "Alice", IsOp: true}, {Name: "Bob"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveOperatorsStripsColorCodes(t *testing.T) {
	players := []PlayerRecord{{Name: "§c§lAlice§r", AFK: true}, {Name: "§aBob"}}

	got := ResolveOperators(players, []string{" ALICE "})
	want := []PlayerRecord{{Name: "§c§lAlice§r", IsOp: true, AFK: true}, {Name: "§aBob"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveOperatorsRedNameIgnoredWhenOpsKnown(t *testing.T) {
	got := ResolveOperators([]PlayerRecord{{Name: "§cMallory"}}, []string{"Alice"})
	assert.False(t, got[0].IsOp)
}

func TestResolveOperatorsPureAndIdempotent(t *testing.T) {
	players := []PlayerRecord{{Name: "§cAlice"}, {Name: "Bob", AFK: true}}
	ops := []string{"bob"}
	before := append([]PlayerRecord(nil), players...)

	first := ResolveOperators(players, ops)
	second := ResolveOperators(players, ops)

	assert.Equal(t, first, second)
	assert.Equal(t, before, players, "input must not be mutated")
	assert.Equal(t, first, ResolveOperators(first, ops))
	assert.Equal(t, []string{"bob"}, ops)
}

func TestStripColorCodes(t *testing.T) {
	assert.Equal(t, "Alice", StripColorCodes("§cA§llice§r"))
	assert.Equal(t, "plain", StripColorCodes("plain"))
	assert.Equal(t, "end§", StripColorCodes("end§"))
}
