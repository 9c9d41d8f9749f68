package store

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/rogersnm/linkbook/internal/graph"
	"github.com/rogersnm/linkbook/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend records saves and can be told to fail.
type fakeBackend struct {
	stored  []model.ManagedObject
	saves   int
	failErr error
	loadErr error
}

func (b *fakeBackend) Load(context.Context) ([]model.ManagedObject, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	return cloneAll(b.stored), nil
}

func (b *fakeBackend) Save(_ context.Context, objects []model.ManagedObject) error {
	if b.failErr != nil {
		return b.failErr
	}
	b.saves++
	b.stored = cloneAll(objects)
	return nil
}

func newTestStore(t *testing.T) (*Store, *fakeBackend) {
	t.Helper()
	b := &fakeBackend{}
	s, err := New(context.Background(), b)
	require.NoError(t, err)
	return s, b
}

func obj(id int64, name string, related ...int64) model.ManagedObject {
	return model.ManagedObject{
		ID: id, Name: name, Description: name + " description", Type: "thing",
		RelatedObjectIDs: related,
	}
}

func mustGet(t *testing.T, s *Store, id int64) model.ManagedObject {
	t.Helper()
	o, err := s.Get(id)
	require.NoError(t, err)
	return o
}

func assertInvariants(t *testing.T, s *Store) {
	t.Helper()
	assert.Empty(t, graph.Build(s.Objects()).Violations())
}

var ctx = context.Background()

// --- Create ---

func TestCreate_EstablishesSymmetry(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Create(ctx, obj(2, "Beta", 1)))

	assert.Equal(t, []int64{2}, mustGet(t, s, 1).RelatedObjectIDs)
	assert.Equal(t, []int64{1}, mustGet(t, s, 2).RelatedObjectIDs)
	assertInvariants(t, s)
}

func TestCreate_DuplicateNameCaseInsensitive(t *testing.T) {
	s, b := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "alpha")))

	err := s.Create(ctx, obj(2, "Alpha"))
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, b.saves)
}

func TestCreate_DuplicateID(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))

	err := s.Create(ctx, obj(1, "Beta"))
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, s.Len())
}

func TestCreate_DropsSelfDanglingAndRepeatedIDs(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Create(ctx, obj(2, "Beta", 2, 1, 1, 99)))

	assert.Equal(t, []int64{1}, mustGet(t, s, 2).RelatedObjectIDs)
	assert.Equal(t, []int64{2}, mustGet(t, s, 1).RelatedObjectIDs)
	assertInvariants(t, s)
}

func TestCreate_DoesNotAliasCallerSlice(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	related := []int64{1}
	require.NoError(t, s.Create(ctx, obj(2, "Beta", related...)))
	related[0] = 42

	assert.Equal(t, []int64{1}, mustGet(t, s, 2).RelatedObjectIDs)
}

func TestCreate_SavesFullCollection(t *testing.T) {
	s, b := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Create(ctx, obj(2, "Beta", 1)))

	require.Len(t, b.stored, 2)
	assert.Equal(t, []int64{2}, b.stored[0].RelatedObjectIDs)
}

// --- Update ---

func TestUpdate_ClearingRelatedUnlinksBothSides(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Create(ctx, obj(2, "Beta", 1)))

	empty := []int64{}
	require.NoError(t, s.Update(ctx, 2, model.ObjectUpdate{RelatedObjectIDs: &empty}))

	assert.Empty(t, mustGet(t, s, 1).RelatedObjectIDs)
	assert.Empty(t, mustGet(t, s, 2).RelatedObjectIDs)
	assertInvariants(t, s)
}

func TestUpdate_AddedAndRemovedPeers(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Create(ctx, obj(2, "Beta")))
	require.NoError(t, s.Create(ctx, obj(3, "Gamma")))
	require.NoError(t, s.Create(ctx, obj(4, "Delta", 1, 2)))

	next := []int64{2, 3}
	require.NoError(t, s.Update(ctx, 4, model.ObjectUpdate{RelatedObjectIDs: &next}))

	assert.Empty(t, mustGet(t, s, 1).RelatedObjectIDs)
	assert.Equal(t, []int64{4}, mustGet(t, s, 2).RelatedObjectIDs)
	assert.Equal(t, []int64{4}, mustGet(t, s, 3).RelatedObjectIDs)
	assert.ElementsMatch(t, []int64{2, 3}, mustGet(t, s, 4).RelatedObjectIDs)
	assertInvariants(t, s)
}

func TestUpdate_FieldsOnlyKeepsLinks(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Create(ctx, obj(2, "Beta", 1)))

	name, desc := "Bravo", "renamed"
	require.NoError(t, s.Update(ctx, 2, model.ObjectUpdate{Name: &name, Description: &desc}))

	b := mustGet(t, s, 2)
	assert.Equal(t, "Bravo", b.Name)
	assert.Equal(t, "renamed", b.Description)
	assert.Equal(t, "thing", b.Type)
	assert.Equal(t, []int64{1}, b.RelatedObjectIDs)
	assert.Equal(t, []int64{2}, mustGet(t, s, 1).RelatedObjectIDs)
}

func TestUpdate_IgnoresSelfAndDanglingIDs(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Create(ctx, obj(2, "Beta")))

	next := []int64{1, 1, 2, 77}
	require.NoError(t, s.Update(ctx, 2, model.ObjectUpdate{RelatedObjectIDs: &next}))

	assert.Equal(t, []int64{1}, mustGet(t, s, 2).RelatedObjectIDs)
	assertInvariants(t, s)
}

func TestUpdate_MissingIDIsNoop(t *testing.T) {
	s, b := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))

	name := "x"
	require.NoError(t, s.Update(ctx, 99, model.ObjectUpdate{Name: &name}))
	assert.Equal(t, 1, b.saves)
	assert.Equal(t, "Alpha", mustGet(t, s, 1).Name)
}

func TestUpdate_EmptyUpdateDoesNotSave(t *testing.T) {
	s, b := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Update(ctx, 1, model.ObjectUpdate{}))
	assert.Equal(t, 1, b.saves)
}

// --- Delete ---

func TestDelete_StripsReferences(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Create(ctx, obj(2, "Beta", 1)))

	require.NoError(t, s.Delete(ctx, 1))

	objects := s.Objects()
	require.Len(t, objects, 1)
	assert.Equal(t, int64(2), objects[0].ID)
	assert.Empty(t, objects[0].RelatedObjectIDs)
	assertInvariants(t, s)
}

func TestDelete_Idempotent(t *testing.T) {
	s, b := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Create(ctx, obj(2, "Beta")))

	require.NoError(t, s.Delete(ctx, 1))
	saves := b.saves
	require.NoError(t, s.Delete(ctx, 1))
	require.NoError(t, s.Delete(ctx, 12345))

	assert.Equal(t, saves, b.saves)
	assert.Equal(t, 1, s.Len())
}

func TestDelete_RemovesFromFilteredView(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Create(ctx, obj(2, "Alphabet", 1)))
	s.Filter("alpha")

	require.NoError(t, s.Delete(ctx, 1))

	view := s.Filtered()
	require.Len(t, view, 1)
	assert.Empty(t, view[0].RelatedObjectIDs)
}

// --- Filter ---

func TestFilter_EmptyQueryReturnsAll(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Create(ctx, obj(2, "Beta")))

	s.Filter("")
	assert.Equal(t, s.Objects(), s.Filtered())
}

func TestFilter_MatchesNameOrDescription(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, model.ManagedObject{ID: 1, Name: "Router", Description: "core switch", Type: "net"}))
	require.NoError(t, s.Create(ctx, model.ManagedObject{ID: 2, Name: "Printer", Description: "Second floor", Type: "dev"}))
	require.NoError(t, s.Create(ctx, model.ManagedObject{ID: 3, Name: "Laptop", Description: "mine", Type: "dev"}))

	s.Filter("OUT")
	assert.Equal(t, []int64{1}, ids(s.Filtered()))

	s.Filter("floor")
	assert.Equal(t, []int64{2}, ids(s.Filtered()))

	s.Filter("r")
	assert.Equal(t, []int64{1, 2}, ids(s.Filtered()))

	s.Filter("zzz")
	assert.Empty(t, s.Filtered())
	assert.Equal(t, "zzz", s.Query())
}

func TestFilter_NewObjectRespectsActiveQuery(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	s.Filter("alp")

	require.NoError(t, s.Create(ctx, obj(2, "Beta")))
	require.NoError(t, s.Create(ctx, obj(3, "Alpine")))

	assert.Equal(t, []int64{1, 3}, ids(s.Filtered()))
}

func TestFilter_UpdateRefreshesView(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Create(ctx, obj(2, "Beta")))
	s.Filter("alpha")

	name := "Beta Alpha"
	require.NoError(t, s.Update(ctx, 2, model.ObjectUpdate{Name: &name}))
	assert.Equal(t, []int64{1, 2}, ids(s.Filtered()))

	rel := []int64{1}
	require.NoError(t, s.Update(ctx, 2, model.ObjectUpdate{RelatedObjectIDs: &rel}))
	view := s.Filtered()
	assert.Equal(t, []int64{2}, view[0].RelatedObjectIDs)
}

func TestReaders_ReturnCopies(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Create(ctx, obj(2, "Beta", 1)))

	all := s.Objects()
	all[0].Name = "mutated"
	all[0].RelatedObjectIDs[0] = 99
	view := s.Filtered()
	view[1].RelatedObjectIDs[0] = 99

	assert.Equal(t, "Alpha", mustGet(t, s, 1).Name)
	assert.Equal(t, []int64{2}, mustGet(t, s, 1).RelatedObjectIDs)
	assert.Equal(t, []int64{1}, mustGet(t, s, 2).RelatedObjectIDs)
}

// --- Lookup ---

func TestGet_NotFound(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Get(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByName(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))

	o, err := s.FindByName("ALPHA")
	require.NoError(t, err)
	assert.Equal(t, int64(1), o.ID)

	_, err = s.FindByName("beta")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRelated(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Create(ctx, obj(2, "Beta")))
	require.NoError(t, s.Create(ctx, obj(3, "Gamma", 2, 1)))

	rel, err := s.Related(3)
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 1}, ids(rel))

	_, err = s.Related(9)
	assert.ErrorIs(t, err, ErrNotFound)
}

// --- Persistence ---

func TestNew_LoadsFromBackend(t *testing.T) {
	b := &fakeBackend{stored: []model.ManagedObject{obj(1, "Alpha", 2), obj(2, "Beta", 1)}}
	s, err := New(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
	assert.Len(t, s.Filtered(), 2)
	assert.Equal(t, 0, b.saves)
}

func TestNew_RepairsBrokenStoredLinks(t *testing.T) {
	b := &fakeBackend{stored: []model.ManagedObject{
		obj(1, "Alpha", 1, 2, 2, 50),
		obj(2, "Beta"),
		obj(3, "Gamma", 1),
		obj(3, "Gamma again"),
	}}
	s, err := New(ctx, b)
	require.NoError(t, err)

	assert.Equal(t, 3, s.Len())
	assert.ElementsMatch(t, []int64{2, 3}, mustGet(t, s, 1).RelatedObjectIDs)
	assert.Equal(t, []int64{1}, mustGet(t, s, 2).RelatedObjectIDs)
	assert.Equal(t, "Gamma", mustGet(t, s, 3).Name)
	assertInvariants(t, s)
}

func TestSync_PersistsLoadRepairs(t *testing.T) {
	b := &fakeBackend{stored: []model.ManagedObject{obj(1, "Alpha", 2), obj(2, "Beta")}}
	s, err := New(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 0, b.saves)

	require.NoError(t, s.Sync(ctx))
	assert.Equal(t, 1, b.saves)
	assert.Empty(t, graph.Build(b.stored).Violations())
}

func TestSync_Failure(t *testing.T) {
	s, b := newTestStore(t)
	b.failErr = errors.New("read-only")
	assert.ErrorIs(t, s.Sync(ctx), ErrStorageUnavailable)
}

func TestNew_LoadError(t *testing.T) {
	_, err := New(ctx, &fakeBackend{loadErr: errors.New("disk gone")})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestSaveFailure_LeavesStateUnchanged(t *testing.T) {
	s, b := newTestStore(t)
	require.NoError(t, s.Create(ctx, obj(1, "Alpha")))
	require.NoError(t, s.Create(ctx, obj(2, "Beta", 1)))
	before := s.Objects()

	b.failErr = errors.New("quota exceeded")

	err := s.Create(ctx, obj(3, "Gamma", 1))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorContains(t, err, "quota exceeded")

	empty := []int64{}
	assert.ErrorIs(t, s.Update(ctx, 2, model.ObjectUpdate{RelatedObjectIDs: &empty}), ErrStorageUnavailable)
	assert.ErrorIs(t, s.Delete(ctx, 1), ErrStorageUnavailable)

	assert.Equal(t, before, s.Objects())
	assert.Equal(t, before, s.Filtered())
}

// --- Properties ---

// TestRandomOperations_PreserveInvariants replays a seeded random sequence of
// mutations and checks the link invariants after every step.
func TestRandomOperations_PreserveInvariants(t *testing.T) {
	s, b := newTestStore(t)
	rng := rand.New(rand.NewSource(7))
	nextID := int64(1)

	randomIDs := func() []int64 {
		n := rng.Intn(4)
		out := make([]int64, n)
		for i := range out {
			out[i] = rng.Int63n(nextID+2) + 1
		}
		return out
	}

	for step := 0; step < 500; step++ {
		switch op := rng.Intn(10); {
		case op < 4:
			o := obj(nextID, "obj-"+string(rune('a'+nextID%26))+string(rune('a'+nextID/26%26)), randomIDs()...)
			nextID++
			err := s.Create(ctx, o)
			if err != nil {
				require.ErrorIs(t, err, ErrDuplicateName)
			}
		case op < 8:
			related := randomIDs()
			require.NoError(t, s.Update(ctx, rng.Int63n(nextID)+1, model.ObjectUpdate{RelatedObjectIDs: &related}))
		default:
			require.NoError(t, s.Delete(ctx, rng.Int63n(nextID)+1))
		}

		require.Empty(t, graph.Build(s.Objects()).Violations(), "step %d", step)
		require.Empty(t, graph.Build(b.stored).Violations(), "stored, step %d", step)
		for _, o := range s.Objects() {
			assert.NotContains(t, o.RelatedObjectIDs, o.ID)
		}
	}
}

func ids(objects []model.ManagedObject) []int64 {
	out := make([]int64, len(objects))
	for i, o := range objects {
		out[i] = o.ID
	}
	return out
}
