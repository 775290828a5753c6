package calculator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitr/internal/errs"
	"github.com/mmynk/splitr/internal/models"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sumSplits(splits []models.Split) decimal.Decimal {
	total := decimal.Zero
	for _, s := range splits {
		total = total.Add(s.Amount)
	}
	return total
}

func TestEqualShare(t *testing.T) {
	tests := []struct {
		amount string
		n      int
		want   string
	}{
		{"300", 2, "150"},
		{"500", 3, "166.67"},
		{"100", 3, "33.33"},
		{"0.05", 2, "0.03"}, // half rounds up
		{"10", 4, "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got := EqualShare(d(tt.amount), tt.n)
			if !got.Equal(d(tt.want)) {
				t.Errorf("EqualShare(%s, %d) = %s, want %s", tt.amount, tt.n, got, tt.want)
			}
		})
	}
}

func TestEqualSplits(t *testing.T) {
	tests := []struct {
		name             string
		amount           string
		others           []string
		remainderToPayer bool
		validateFunc     func(t *testing.T, splits []models.Split)
	}{
		{
			name:   "three-way split keeps rounding loss",
			amount: "500",
			others: []string{"bob", "carol"},
			validateFunc: func(t *testing.T, splits []models.Split) {
				for _, s := range splits {
					if !s.Amount.Equal(d("166.67")) {
						t.Errorf("%s share = %s, want 166.67", s.UserID, s.Amount)
					}
				}
				if got := sumSplits(splits); !got.Equal(d("500.01")) {
					t.Errorf("sum = %s, want 500.01", got)
				}
			},
		},
		{
			name:             "remainder goes to payer",
			amount:           "500",
			others:           []string{"bob", "carol"},
			remainderToPayer: true,
			validateFunc: func(t *testing.T, splits []models.Split) {
				if !splits[0].Amount.Equal(d("166.66")) {
					t.Errorf("payer share = %s, want 166.66", splits[0].Amount)
				}
				if got := sumSplits(splits); !got.Equal(d("500")) {
					t.Errorf("sum = %s, want 500", got)
				}
			},
		},
		{
			name:   "payer first and paid",
			amount: "300",
			others: []string{"alice"},
			validateFunc: func(t *testing.T, splits []models.Split) {
				if len(splits) != 2 {
					t.Fatalf("got %d splits, want 2", len(splits))
				}
				if splits[0].UserID != "john" || !splits[0].Paid {
					t.Errorf("first split = %+v, want paid payer", splits[0])
				}
				if splits[1].Paid {
					t.Errorf("member split should be unpaid")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits := EqualSplits(d(tt.amount), "john", tt.others, tt.remainderToPayer)
			tt.validateFunc(t, splits)
		})
	}
}

func TestCalculateSplits(t *testing.T) {
	tests := []struct {
		name         string
		splitType    models.SplitType
		amount       string
		participants []Participant
		wantErr      bool
		validateFunc func(t *testing.T, splits []models.Split)
	}{
		{
			name:      "equal split marks payer paid",
			splitType: models.SplitEqual,
			amount:    "90",
			participants: []Participant{
				{UserID: "alice"}, {UserID: "bob"}, {UserID: "carol"},
			},
			validateFunc: func(t *testing.T, splits []models.Split) {
				for _, s := range splits {
					if !s.Amount.Equal(d("30")) {
						t.Errorf("%s = %s, want 30", s.UserID, s.Amount)
					}
					if s.Paid != (s.UserID == "alice") {
						t.Errorf("%s paid = %v", s.UserID, s.Paid)
					}
				}
			},
		},
		{
			name:      "percentage split",
			splitType: models.SplitPercentage,
			amount:    "200",
			participants: []Participant{
				{UserID: "alice", Percentage: d("25")},
				{UserID: "bob", Percentage: d("75")},
			},
			validateFunc: func(t *testing.T, splits []models.Split) {
				if !splits[0].Amount.Equal(d("50")) || !splits[1].Amount.Equal(d("150")) {
					t.Errorf("got %s / %s, want 50 / 150", splits[0].Amount, splits[1].Amount)
				}
			},
		},
		{
			name:      "percentages must add to 100",
			splitType: models.SplitPercentage,
			amount:    "200",
			participants: []Participant{
				{UserID: "alice", Percentage: d("25")},
				{UserID: "bob", Percentage: d("70")},
			},
			wantErr: true,
		},
		{
			name:      "exact split within tolerance",
			splitType: models.SplitExact,
			amount:    "100",
			participants: []Participant{
				{UserID: "alice", Amount: d("33.33")},
				{UserID: "bob", Amount: d("66.66")},
			},
		},
		{
			name:      "exact split off by more than a cent",
			splitType: models.SplitExact,
			amount:    "100",
			participants: []Participant{
				{UserID: "alice", Amount: d("33.33")},
				{UserID: "bob", Amount: d("66.65")},
			},
			wantErr: true,
		},
		{
			name:         "no participants should error",
			splitType:    models.SplitEqual,
			amount:       "10",
			participants: nil,
			wantErr:      true,
		},
		{
			name:         "duplicate participant",
			splitType:    models.SplitEqual,
			amount:       "10",
			participants: []Participant{{UserID: "alice"}, {UserID: "alice"}},
			wantErr:      true,
		},
		{
			name:         "unknown type",
			splitType:    "shares",
			amount:       "10",
			participants: []Participant{{UserID: "alice"}},
			wantErr:      true,
		},
		{
			name:         "zero amount",
			splitType:    models.SplitEqual,
			amount:       "0",
			participants: []Participant{{UserID: "alice"}},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splits, err := CalculateSplits(tt.splitType, d(tt.amount), "alice", tt.participants)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CalculateSplits() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, errs.ErrValidation) {
					t.Errorf("error %v is not a validation error", err)
				}
				return
			}
			if tt.validateFunc != nil {
				tt.validateFunc(t, splits)
			}
		})
	}
}
