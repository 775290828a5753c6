package calculator

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitr/internal/models"
)

func expense(payer string, splits ...models.Split) *models.Expense {
	return &models.Expense{PayerID: payer, Splits: splits}
}

func owe(user, amount string) models.Split {
	return models.Split{UserID: user, Amount: d(amount)}
}

func paid(user, amount string) models.Split {
	return models.Split{UserID: user, Amount: d(amount), Paid: true}
}

func TestBuildLedger(t *testing.T) {
	members := []string{"alice", "bob", "carol"}
	expenses := []*models.Expense{
		expense("alice", paid("alice", "30"), owe("bob", "30"), owe("carol", "30")),
		expense("bob", paid("bob", "20"), owe("alice", "20")),
	}
	settlements := []*models.Settlement{
		{PayerID: "carol", ReceiverID: "alice", Amount: d("10")},
	}

	totals, raw := BuildLedger(members, expenses, settlements)

	wantTotals := map[string]string{"alice": "30", "bob": "-10", "carol": "-20"}
	for user, want := range wantTotals {
		if !totals[user].Equal(d(want)) {
			t.Errorf("total[%s] = %s, want %s", user, totals[user], want)
		}
	}

	if got := raw.Get("bob", "alice"); !got.Equal(d("30")) {
		t.Errorf("raw[bob][alice] = %s, want 30", got)
	}
	if got := raw.Get("alice", "bob"); !got.Equal(d("20")) {
		t.Errorf("raw[alice][bob] = %s, want 20", got)
	}
	if got := raw.Get("carol", "alice"); !got.Equal(d("20")) {
		t.Errorf("raw[carol][alice] = %s, want 20 (30 owed less 10 settled)", got)
	}

	sum := decimal.Zero
	for _, v := range totals {
		sum = sum.Add(v)
	}
	if !sum.IsZero() {
		t.Errorf("group totals sum to %s, want 0", sum)
	}
}

func TestNet_SingleDirection(t *testing.T) {
	raw := Ledger{}
	raw.set("a", "b", d("30"))
	raw.set("b", "a", d("20"))
	raw.set("a", "c", d("5"))
	raw.set("c", "a", d("5"))
	raw.set("b", "c", d("-10")) // a settlement overshoot
	raw.set("c", "b", d("0"))

	netted := Net(raw)

	ids := netted.Users()
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			ab, ba := netted.Get(a, b), netted.Get(b, a)
			if !ab.IsZero() && !ba.IsZero() {
				t.Errorf("pair (%s,%s) has both directions: %s / %s", a, b, ab, ba)
			}
			if ab.IsNegative() || ba.IsNegative() {
				t.Errorf("pair (%s,%s) has a negative entry: %s / %s", a, b, ab, ba)
			}
		}
	}

	if got := netted.Get("a", "b"); !got.Equal(d("10")) {
		t.Errorf("a->b = %s, want 10", got)
	}
	if got := netted.Get("c", "b"); !got.Equal(d("10")) {
		t.Errorf("c->b = %s, want 10", got)
	}
	if got := netted.Get("a", "c"); !got.IsZero() {
		t.Errorf("a->c = %s, want 0", got)
	}
	if got := raw.Get("b", "a"); !got.Equal(d("20")) {
		t.Errorf("Net modified its input: raw b->a = %s", got)
	}
}

func TestNet_Idempotent(t *testing.T) {
	members := []string{"alice", "bob", "carol", "dave"}
	expenses := []*models.Expense{
		expense("alice", paid("alice", "25"), owe("bob", "25"), owe("carol", "25"), owe("dave", "25")),
		expense("bob", paid("bob", "40"), owe("alice", "40")),
		expense("dave", paid("dave", "12.34"), owe("carol", "12.33")),
	}
	settlements := []*models.Settlement{
		{PayerID: "carol", ReceiverID: "alice", Amount: d("30")},
	}
	_, raw := BuildLedger(members, expenses, settlements)

	once := Net(raw)
	twice := Net(once)

	for _, a := range once.Users() {
		for _, b := range once.Users() {
			if !once.Get(a, b).Equal(twice.Get(a, b)) {
				t.Errorf("[%s][%s]: once %s, twice %s", a, b, once.Get(a, b), twice.Get(a, b))
			}
		}
	}
}

func TestGroupBalances(t *testing.T) {
	members := []string{"alice", "bob"}
	expenses := []*models.Expense{
		expense("alice", paid("alice", "50"), owe("bob", "50")),
		expense("bob", paid("bob", "10"), owe("alice", "10")),
	}

	balances := GroupBalances(members, expenses, nil)
	if len(balances) != 2 {
		t.Fatalf("got %d balances, want 2", len(balances))
	}

	alice, bob := balances[0], balances[1]
	if alice.UserID != "alice" || !alice.Total.Equal(d("40")) {
		t.Errorf("alice = %+v, want total 40", alice)
	}
	if len(alice.Owes) != 0 {
		t.Errorf("alice owes %v, want nothing", alice.Owes)
	}
	if len(alice.OwedBy) != 1 || alice.OwedBy[0].UserID != "bob" || !alice.OwedBy[0].Amount.Equal(d("40")) {
		t.Errorf("alice owedBy = %v, want bob 40", alice.OwedBy)
	}
	if len(bob.Owes) != 1 || bob.Owes[0].UserID != "alice" || !bob.Owes[0].Amount.Equal(d("40")) {
		t.Errorf("bob owes = %v, want alice 40", bob.Owes)
	}
	if !bob.Total.Equal(d("-40")) {
		t.Errorf("bob total = %s, want -40", bob.Total)
	}
}

func TestGroupBalances_FormerMember(t *testing.T) {
	// bob left the group but still owes alice.
	expenses := []*models.Expense{
		expense("alice", paid("alice", "20"), owe("bob", "20")),
	}
	balances := GroupBalances([]string{"alice"}, expenses, nil)
	if len(balances) != 1 {
		t.Fatalf("got %d balances, want 1", len(balances))
	}
	if len(balances[0].OwedBy) != 1 || balances[0].OwedBy[0].UserID != "bob" {
		t.Errorf("alice owedBy = %v, want bob", balances[0].OwedBy)
	}
}

func TestSuggestTransfers(t *testing.T) {
	balances := []MemberBalance{
		{UserID: "alice", Total: d("60")},
		{UserID: "bob", Total: d("-45")},
		{UserID: "carol", Total: d("-15")},
		{UserID: "dave", Total: d("0")},
	}

	edges := SuggestTransfers(balances)
	if len(edges) != 2 {
		t.Fatalf("got %d transfers, want 2: %v", len(edges), edges)
	}
	if edges[0].From != "bob" || edges[0].To != "alice" || !edges[0].Amount.Equal(d("45")) {
		t.Errorf("first transfer = %+v", edges[0])
	}
	if edges[1].From != "carol" || !edges[1].Amount.Equal(d("15")) {
		t.Errorf("second transfer = %+v", edges[1])
	}
}
