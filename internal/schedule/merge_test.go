package schedule

import (
	"errors"
	"reflect"
	"testing"
)

//
// Общие сценарии merge: их же гоняет клиентское зеркало,
// чтобы сервер и клиент не разъехались.
//

func TestMerge_ExceptionReplacesCommon(t *testing.T) {
	common := []Slot{{Slot: 1, Start: "08:00", End: "09:00"}}
	exceptions := []Exception{{Slot: 1, Start: "12:00", End: "13:00"}}

	got := Merge(common, exceptions)

	want := []Slot{{Slot: 1, Start: "12:00", End: "13:00"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge = %+v, want %+v", got, want)
	}
}

func TestMerge_PureAdditionSortedBySlot(t *testing.T) {
	common := []Slot{{Slot: 1, Start: "08:00", End: "09:00"}}
	exceptions := []Exception{{Slot: 2, Start: "14:00", End: "15:00"}}

	got := Merge(common, exceptions)

	want := []Slot{
		{Slot: 1, Start: "08:00", End: "09:00"},
		{Slot: 2, Start: "14:00", End: "15:00"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge = %+v, want %+v", got, want)
	}
}

func TestMerge_DeletedSuppressesCommon(t *testing.T) {
	common := []Slot{
		{Slot: 1, Start: "08:00", End: "09:00"},
		{Slot: 2, Start: "10:00", End: "11:00"},
	}
	exceptions := []Exception{{Slot: 1, Deleted: true}}

	got := Merge(common, exceptions)

	want := []Slot{{Slot: 2, Start: "10:00", End: "11:00"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge = %+v, want %+v", got, want)
	}
}

func TestMerge_DeletedWithoutCommonIsNoop(t *testing.T) {
	exceptions := []Exception{{Slot: 2, Deleted: true}}

	got := Merge(nil, exceptions)
	if len(got) != 0 {
		t.Fatalf("Merge = %+v, want empty", got)
	}
}

func TestMerge_MixedOverrideAndAddition(t *testing.T) {
	common := []Slot{{Slot: 1, Start: "08:00", End: "09:00"}}
	exceptions := []Exception{
		{Slot: 2, Start: "14:00", End: "15:00"},
		{Slot: 1, Start: "12:00", End: "13:00"},
	}

	got := Merge(common, exceptions)

	want := []Slot{
		{Slot: 1, Start: "12:00", End: "13:00"},
		{Slot: 2, Start: "14:00", End: "15:00"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge = %+v, want %+v", got, want)
	}
}

func TestMerge_NoExceptions(t *testing.T) {
	common := []Slot{
		{Slot: 1, Start: "08:00", End: "09:00"},
		{Slot: 2, Start: "10:00", End: "11:00"},
	}

	got := Merge(common, nil)
	if !reflect.DeepEqual(got, common) {
		t.Fatalf("Merge = %+v, want %+v", got, common)
	}
}

func TestValidateDay_OK(t *testing.T) {
	slots := []Slot{
		{Slot: 1, Start: "09:00", End: "10:00"},
		{Slot: 2, Start: "10:00", End: "11:00"}, // впритык — не конфликт
	}
	if err := ValidateDay(slots); err != nil {
		t.Fatalf("ValidateDay: %v", err)
	}
}

func TestValidateDay_Overlap(t *testing.T) {
	slots := []Slot{
		{Slot: 1, Start: "09:00", End: "10:00"},
		{Slot: 2, Start: "09:30", End: "11:00"},
	}

	err := ValidateDay(slots)
	var conflict *TimeConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected TimeConflictError, got %v", err)
	}
}

func TestValidateDay_BadRange(t *testing.T) {
	slots := []Slot{{Slot: 1, Start: "10:00", End: "10:00"}}
	if err := ValidateDay(slots); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := Paginate(items, 2, 2)
	if !reflect.DeepEqual(page.Items, []int{3, 4}) {
		t.Fatalf("page items = %v", page.Items)
	}
	if !page.HasNext || !page.HasPrev {
		t.Fatalf("expected HasNext and HasPrev, got %+v", page)
	}
	if page.Total != 5 {
		t.Fatalf("total = %d, want 5", page.Total)
	}

	// Некорректные значения -> дефолты.
	page = Paginate(items, 0, 0)
	if page.Page != 1 || len(page.Items) != 5 {
		t.Fatalf("default page = %+v", page)
	}

	// Страница за концом списка пустая, без паники.
	page = Paginate(items, 10, 2)
	if len(page.Items) != 0 || page.HasNext {
		t.Fatalf("out-of-range page = %+v", page)
	}
}
