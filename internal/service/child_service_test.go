package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"

	"storypals/internal/domain"
)

type mockChildRepo struct {
	children map[string]domain.Child
}

func (m *mockChildRepo) Create(_ context.Context, child domain.Child) error {
	m.children[child.ID] = child
	return nil
}

func (m *mockChildRepo) GetByID(_ context.Context, id string) (domain.Child, error) {
	c, ok := m.children[id]
	if !ok {
		return domain.Child{}, pgx.ErrNoRows
	}
	return c, nil
}

func (m *mockChildRepo) ListByParentID(_ context.Context, parentID string) ([]domain.Child, error) {
	out := []domain.Child{}
	for _, c := range m.children {
		if c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockChildRepo) Update(_ context.Context, child domain.Child) error {
	c, ok := m.children[child.ID]
	if !ok || c.ParentID != child.ParentID {
		return pgx.ErrNoRows
	}
	m.children[child.ID] = child
	return nil
}

func (m *mockChildRepo) Delete(_ context.Context, id, parentID string) error {
	c, ok := m.children[id]
	if !ok || c.ParentID != parentID {
		return pgx.ErrNoRows
	}
	delete(m.children, id)
	return nil
}

func TestChildServiceCreateAndGet(t *testing.T) {
	repo := &mockChildRepo{children: map[string]domain.Child{}}
	svc := NewChildService(repo)

	child, err := svc.Create(context.Background(), "p1", CreateChildInput{
		Name:      " Emma ",
		Age:       7,
		Interests: []string{" space ", "", "dinosaurs"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if child.Name != "Emma" || child.AgeGroup != domain.AgeGroupEarly || child.ReadingLevel != "Beginner" {
		t.Fatalf("unexpected child: %+v", child)
	}
	if len(child.Interests) != 2 || child.Interests[0] != "space" {
		t.Fatalf("unexpected interests: %+v", child.Interests)
	}

	got, err := svc.Get(context.Background(), "p1", child.ID)
	if err != nil || got.ID != child.ID {
		t.Fatalf("expected child, got %+v (%v)", got, err)
	}
	if _, err := svc.Get(context.Background(), "p2", child.ID); !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("expected ErrChildNotFound for other parent, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "p1", "bogus"); !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("expected ErrChildNotFound for bad id, got %v", err)
	}
}

func TestChildServiceCreate_Validation(t *testing.T) {
	svc := NewChildService(&mockChildRepo{children: map[string]domain.Child{}})
	for _, in := range []CreateChildInput{{Name: "", Age: 6}, {Name: "Max", Age: 2}, {Name: "Max", Age: 13}} {
		if _, err := svc.Create(context.Background(), "p1", in); !errors.Is(err, ErrChildInvalidInput) {
			t.Fatalf("expected ErrChildInvalidInput for %+v, got %v", in, err)
		}
	}
}

func TestChildServiceUpdate(t *testing.T) {
	repo := &mockChildRepo{children: map[string]domain.Child{}}
	svc := NewChildService(repo)
	child, err := svc.Create(context.Background(), "p1", CreateChildInput{Name: "Emma", Age: 5, Interests: []string{"space"}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	age := 9
	level := " Advanced "
	updated, err := svc.Update(context.Background(), "p1", child.ID, UpdateChildInput{
		Age:          &age,
		Interests:    []string{"oceans", "Oceans", " "},
		ReadingLevel: &level,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Emma" || updated.Age != 9 || updated.AgeGroup != domain.AgeGroupMiddle || updated.ReadingLevel != "Advanced" {
		t.Fatalf("unexpected updated child: %+v", updated)
	}
	if len(updated.Interests) != 1 || updated.Interests[0] != "oceans" {
		t.Fatalf("expected deduplicated interests, got %+v", updated.Interests)
	}
	if repo.children[child.ID].Age != 9 {
		t.Fatalf("expected update persisted")
	}

	tooOld := 14
	if _, err := svc.Update(context.Background(), "p1", child.ID, UpdateChildInput{Age: &tooOld}); !errors.Is(err, ErrChildInvalidInput) {
		t.Fatalf("expected ErrChildInvalidInput, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "p2", child.ID, UpdateChildInput{Age: &age}); !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("expected ErrChildNotFound for other parent, got %v", err)
	}
}

func TestChildServiceDelete(t *testing.T) {
	repo := &mockChildRepo{children: map[string]domain.Child{}}
	svc := NewChildService(repo)
	child, err := svc.Create(context.Background(), "p1", CreateChildInput{Name: "Emma", Age: 7})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), "p2", child.ID); !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("expected ErrChildNotFound for other parent, got %v", err)
	}
	if err := svc.Delete(context.Background(), "p1", child.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), "p1", child.ID); !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("expected deleted child to be gone, got %v", err)
	}
	if err := svc.Delete(context.Background(), "p1", "not-a-uuid"); !errors.Is(err, ErrChildNotFound) {
		t.Fatalf("expected ErrChildNotFound for bad id, got %v", err)
	}
}
