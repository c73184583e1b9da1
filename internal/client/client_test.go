package client

import (
	"context"
	"errors"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/leganyst/weekly-schedule/internal/api"
	"github.com/leganyst/weekly-schedule/internal/repository"
	"github.com/leganyst/weekly-schedule/internal/schedule"
	"github.com/leganyst/weekly-schedule/internal/service"
)

// Клиент гоняется против настоящего REST-слоя: локальный merge
// обязан совпадать с серверным резолвером на одних данных.
func newTestPair(t *testing.T) *Client {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	schemaStmts := []string{
		`CREATE TABLE common_tasks (
			id TEXT PRIMARY KEY,
			weekday INTEGER NOT NULL,
			slot INTEGER NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE (weekday, slot)
		);`,
		`CREATE TABLE exception_tasks (
			id TEXT PRIMARY KEY,
			common_task_id TEXT,
			slot_date DATE NOT NULL,
			slot INTEGER NOT NULL,
			status TEXT NOT NULL,
			start_time TEXT,
			end_time TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			UNIQUE (slot_date, slot)
		);`,
	}
	for _, stmt := range schemaStmts {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	svc := service.NewScheduleService(
		repository.NewGormCommonTaskRepository(db),
		repository.NewGormExceptionTaskRepository(db),
		zerolog.Nop(),
	)
	srv := httptest.NewServer(api.NewServer(svc, zerolog.Nop(), "*").Handler())
	t.Cleanup(srv.Close)

	return New(srv.URL)
}

func TestClient_EffectiveDayMatchesServer(t *testing.T) {
	c := newTestPair(t)
	ctx := context.Background()

	// 2025-01-08 — среда (weekday 3).
	if _, err := c.CreateCommonTask(ctx, CreateCommonTaskRequest{
		Weekday: 3, Slot: 1, StartTime: "08:00", EndTime: "09:00",
	}); err != nil {
		t.Fatalf("seed common: %v", err)
	}

	start := "12:00"
	end := "13:00"
	if _, err := c.CreateExceptionTask(ctx, CreateExceptionTaskRequest{
		SlotDate: "2025-01-08", Status: "updated", Slot: 1, StartTime: &start, EndTime: &end,
	}); err != nil {
		t.Fatalf("seed exception: %v", err)
	}
	addStart := "14:00"
	addEnd := "15:00"
	if _, err := c.CreateExceptionTask(ctx, CreateExceptionTaskRequest{
		SlotDate: "2025-01-08", Status: "updated", Slot: 2, StartTime: &addStart, EndTime: &addEnd,
	}); err != nil {
		t.Fatalf("seed addition: %v", err)
	}

	local, err := c.EffectiveDay(ctx, "2025-01-08")
	if err != nil {
		t.Fatalf("EffectiveDay: %v", err)
	}

	remote, err := c.EffectiveSlots(ctx, "2025-01-08")
	if err != nil {
		t.Fatalf("EffectiveSlots: %v", err)
	}

	remoteSlots := make([]schedule.Slot, 0, len(remote))
	for _, r := range remote {
		remoteSlots = append(remoteSlots, schedule.Slot{Slot: r.Slot, Start: r.StartTime, End: r.EndTime})
	}

	if !reflect.DeepEqual(local, remoteSlots) {
		t.Fatalf("mirror drift: local %+v vs server %+v", local, remoteSlots)
	}

	want := []schedule.Slot{
		{Slot: 1, Start: "12:00", End: "13:00"},
		{Slot: 2, Start: "14:00", End: "15:00"},
	}
	if !reflect.DeepEqual(local, want) {
		t.Fatalf("merge = %+v, want %+v", local, want)
	}
}

func TestClient_DeletedMarkerMatchesServer(t *testing.T) {
	c := newTestPair(t)
	ctx := context.Background()

	if _, err := c.CreateCommonTask(ctx, CreateCommonTaskRequest{
		Weekday: 3, Slot: 1, StartTime: "08:00", EndTime: "09:00",
	}); err != nil {
		t.Fatalf("seed common: %v", err)
	}
	if _, err := c.CreateExceptionTask(ctx, CreateExceptionTaskRequest{
		SlotDate: "2025-01-08", Status: "deleted", Slot: 1,
	}); err != nil {
		t.Fatalf("seed deleted marker: %v", err)
	}

	local, err := c.EffectiveDay(ctx, "2025-01-08")
	if err != nil {
		t.Fatalf("EffectiveDay: %v", err)
	}
	if len(local) != 0 {
		t.Fatalf("deleted slot resurfaced locally: %+v", local)
	}

	remote, err := c.EffectiveSlots(ctx, "2025-01-08")
	if err != nil {
		t.Fatalf("EffectiveSlots: %v", err)
	}
	if len(remote) != 0 {
		t.Fatalf("deleted slot resurfaced on server: %+v", remote)
	}
}

func TestClient_EffectiveWeek(t *testing.T) {
	c := newTestPair(t)
	ctx := context.Background()

	if _, err := c.CreateCommonTask(ctx, CreateCommonTaskRequest{
		Weekday: 1, Slot: 1, StartTime: "09:00", EndTime: "10:00",
	}); err != nil {
		t.Fatalf("seed monday: %v", err)
	}

	// Неделя с воскресенья 2025-01-05.
	start := time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)
	week, err := c.EffectiveWeek(ctx, start)
	if err != nil {
		t.Fatalf("EffectiveWeek: %v", err)
	}

	if len(week) != 7 {
		t.Fatalf("week has %d days", len(week))
	}
	monday := week["2025-01-06"]
	if len(monday) != 1 || monday[0].Start != "09:00" {
		t.Fatalf("monday = %+v", monday)
	}
	if len(week["2025-01-07"]) != 0 {
		t.Fatalf("tuesday should be empty: %+v", week["2025-01-07"])
	}
}

func TestClient_SaveDayPlansMinimalMutations(t *testing.T) {
	c := newTestPair(t)
	ctx := context.Background()

	// Шаблон понедельника: слот 1.
	if _, err := c.CreateCommonTask(ctx, CreateCommonTaskRequest{
		Weekday: 1, Slot: 1, StartTime: "09:00", EndTime: "10:00",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Правка дня: слот 1 сдвинут, слот 2 добавлен (в шаблоне его нет).
	edited := []schedule.Slot{
		{Slot: 1, Start: "11:00", End: "12:00"},
		{Slot: 2, Start: "14:00", End: "15:00"},
	}
	if err := c.ValidateLocal(edited); err != nil {
		t.Fatalf("ValidateLocal: %v", err)
	}
	if err := c.SaveDay(ctx, "2025-01-06", edited); err != nil {
		t.Fatalf("SaveDay: %v", err)
	}

	// Сдвиг слота 1 стал исключением даты.
	exceptions, err := c.ExceptionTasksByDate(ctx, "2025-01-06")
	if err != nil {
		t.Fatalf("list exceptions: %v", err)
	}
	if len(exceptions) != 1 || exceptions[0].Slot != 1 || exceptions[0].Status != "updated" {
		t.Fatalf("exceptions = %+v", exceptions)
	}

	// Новый слот 2 попал в недельный шаблон, а не в исключения.
	weekday := 1
	common, err := c.CommonTasks(ctx, &weekday)
	if err != nil {
		t.Fatalf("list common: %v", err)
	}
	if len(common) != 2 || common[1].Slot != 2 || common[1].StartTime != "14:00" {
		t.Fatalf("common = %+v", common)
	}

	// Эффективное расписание даты собирает всё вместе.
	day, err := c.EffectiveDay(ctx, "2025-01-06")
	if err != nil {
		t.Fatalf("EffectiveDay: %v", err)
	}
	want := []schedule.Slot{
		{Slot: 1, Start: "11:00", End: "12:00"},
		{Slot: 2, Start: "14:00", End: "15:00"},
	}
	if !reflect.DeepEqual(day, want) {
		t.Fatalf("effective day = %+v, want %+v", day, want)
	}

	// Другой понедельник живёт по шаблону.
	other, err := c.EffectiveDay(ctx, "2025-01-13")
	if err != nil {
		t.Fatalf("other monday: %v", err)
	}
	wantOther := []schedule.Slot{
		{Slot: 1, Start: "09:00", End: "10:00"},
		{Slot: 2, Start: "14:00", End: "15:00"},
	}
	if !reflect.DeepEqual(other, wantOther) {
		t.Fatalf("other monday = %+v, want %+v", other, wantOther)
	}
}

func TestClient_SaveDayZeroedSlotBecomesDeletedMarker(t *testing.T) {
	c := newTestPair(t)
	ctx := context.Background()

	if _, err := c.CreateCommonTask(ctx, CreateCommonTaskRequest{
		Weekday: 1, Slot: 1, StartTime: "09:00", EndTime: "10:00",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Обнулённое окно = «на эту дату слота нет».
	if err := c.SaveDay(ctx, "2025-01-06", []schedule.Slot{
		{Slot: 1, Start: "00:00", End: "00:00"},
	}); err != nil {
		t.Fatalf("SaveDay: %v", err)
	}

	exceptions, err := c.ExceptionTasksByDate(ctx, "2025-01-06")
	if err != nil {
		t.Fatalf("list exceptions: %v", err)
	}
	if len(exceptions) != 1 || exceptions[0].Status != "deleted" {
		t.Fatalf("exceptions = %+v", exceptions)
	}

	day, err := c.EffectiveDay(ctx, "2025-01-06")
	if err != nil {
		t.Fatalf("EffectiveDay: %v", err)
	}
	if len(day) != 0 {
		t.Fatalf("zeroed slot resurfaced: %+v", day)
	}
}

func TestClient_SaveDayUnchangedSlotIsNoop(t *testing.T) {
	c := newTestPair(t)
	ctx := context.Background()

	if _, err := c.CreateCommonTask(ctx, CreateCommonTaskRequest{
		Weekday: 1, Slot: 1, StartTime: "09:00", EndTime: "10:00",
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Время совпадает с шаблоном — мутаций быть не должно.
	if err := c.SaveDay(ctx, "2025-01-06", []schedule.Slot{
		{Slot: 1, Start: "09:00", End: "10:00"},
	}); err != nil {
		t.Fatalf("SaveDay: %v", err)
	}

	exceptions, err := c.ExceptionTasksByDate(ctx, "2025-01-06")
	if err != nil {
		t.Fatalf("list exceptions: %v", err)
	}
	if len(exceptions) != 0 {
		t.Fatalf("unexpected exceptions: %+v", exceptions)
	}
}

func TestClient_APIErrorSurfacesMessage(t *testing.T) {
	c := newTestPair(t)
	ctx := context.Background()

	_, err := c.CreateCommonTask(ctx, CreateCommonTaskRequest{
		Weekday: 1, Slot: 1, StartTime: "25:00", EndTime: "26:00",
	})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != 400 {
		t.Fatalf("status = %d, want 400", apiErr.Status)
	}
	if apiErr.Message == "" {
		t.Fatalf("message must carry server detail")
	}
}
