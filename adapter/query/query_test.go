package query

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vinicius-lino-figueiredo/doctable/adapter/memstore"
	"github.com/vinicius-lino-figueiredo/doctable/domain"
)

type M = domain.Row

var ctx = context.Background()

type driverMock struct{ mock.Mock }

// Collection implements domain.Driver.
func (d *driverMock) Collection(ctx context.Context, name string) (domain.Collection, error) {
	call := d.Called(ctx, name)
	c, _ := call.Get(0).(domain.Collection)
	return c, call.Error(1)
}

// Close implements domain.Driver.
func (d *driverMock) Close(ctx context.Context) error {
	return d.Called(ctx).Error(0)
}

type collectionMock struct{ mock.Mock }

// CountDocuments implements domain.Collection.
func (c *collectionMock) CountDocuments(ctx context.Context, filter domain.Filter) (int64, error) {
	call := c.Called(ctx, filter)
	return call.Get(0).(int64), call.Error(1)
}

// DeleteOne implements domain.Collection.
func (c *collectionMock) DeleteOne(ctx context.Context, filter domain.Filter) (domain.DeleteResult, error) {
	call := c.Called(ctx, filter)
	return call.Get(0).(domain.DeleteResult), call.Error(1)
}

// Find implements domain.Collection.
func (c *collectionMock) Find(ctx context.Context, filter domain.Filter, options ...domain.FindOption) (domain.Cursor, error) {
	call := c.Called(ctx, filter, options)
	cur, _ := call.Get(0).(domain.Cursor)
	return cur, call.Error(1)
}

// FindOne implements domain.Collection.
func (c *collectionMock) FindOne(ctx context.Context, filter domain.Filter, options ...domain.FindOption) (domain.Row, error) {
	call := c.Called(ctx, filter, options)
	row, _ := call.Get(0).(domain.Row)
	return row, call.Error(1)
}

// InsertOne implements domain.Collection.
func (c *collectionMock) InsertOne(ctx context.Context, doc domain.Row) (domain.InsertOneResult, error) {
	call := c.Called(ctx, doc)
	return call.Get(0).(domain.InsertOneResult), call.Error(1)
}

// UpdateOne implements domain.Collection.
func (c *collectionMock) UpdateOne(ctx context.Context, filter domain.Filter, set domain.Row) (domain.UpdateResult, error) {
	call := c.Called(ctx, filter, set)
	return call.Get(0).(domain.UpdateResult), call.Error(1)
}

type cursorMock struct{ mock.Mock }

// All implements domain.Cursor.
func (c *cursorMock) All(ctx context.Context) ([]domain.Row, error) {
	call := c.Called(ctx)
	rows, _ := call.Get(0).([]domain.Row)
	return rows, call.Error(1)
}

// Close implements domain.Cursor.
func (c *cursorMock) Close() error { return c.Called().Error(0) }

// Err implements domain.Cursor.
func (c *cursorMock) Err() error { return c.Called().Error(0) }

// Next implements domain.Cursor.
func (c *cursorMock) Next() bool { return c.Called().Bool(0) }

// Scan implements domain.Cursor.
func (c *cursorMock) Scan(ctx context.Context, target any) error {
	return c.Called(ctx, target).Error(0)
}

// sorted matches the options of a call by the sort they carry.
func sorted(sort domain.Sort) any {
	return mock.MatchedBy(func(opts []domain.FindOption) bool {
		s := domain.NewFindOptions(opts...).Sort
		if len(s) != len(sort) {
			return false
		}
		for i := range s {
			if s[i] != sort[i] {
				return false
			}
		}
		return true
	})
}

type QueryTestSuite struct {
	suite.Suite
	driver *driverMock
	coll   *collectionMock
	logs   *bytes.Buffer
	table  TableQueryBuilder
}

func (s *QueryTestSuite) SetupTest() {
	s.driver = new(driverMock)
	s.coll = new(collectionMock)
	s.logs = new(bytes.Buffer)
	logger := slog.New(slog.NewTextHandler(s.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s.table = NewTableQueryBuilder(s.driver, "users", WithLogger(logger))
	s.driver.On("Collection", mock.Anything, "users").Return(s.coll, nil).Maybe()
}

func (s *QueryTestSuite) TearDownTest() {
	s.coll.AssertExpectations(s.T())
}

// memTable returns a builder over a fresh embedded store seeded with docs.
func (s *QueryTestSuite) memTable(name string, docs ...M) TableQueryBuilder {
	d := memstore.NewDriver()
	coll, err := d.Collection(ctx, name)
	s.Require().NoError(err)
	for _, doc := range docs {
		_, err := coll.InsertOne(ctx, doc)
		s.Require().NoError(err)
	}
	return NewTableQueryBuilder(d, name)
}

func (s *QueryTestSuite) TestLastWriteWins() {
	q := s.table.Eq("age", 5).Gte("age", 18)
	s.Equal(domain.Filter{"age": map[string]any{"$gte": 18}}, q.Filter())

	q = s.table.Gt("age", 1).Eq("name", "Bob").Eq("age", 3)
	s.Equal(domain.Filter{"age": 3, "name": "Bob"}, q.Filter())
	s.Equal([]domain.Predicate{
		{Field: "age", Operator: domain.OpEq, Value: 3},
		{Field: "name", Operator: domain.OpEq, Value: "Bob"},
	}, q.State().Predicates())
}

func (s *QueryTestSuite) TestTranslation() {
	s.Equal(domain.Filter{}, s.table.Select().Filter())
	s.Equal(domain.Filter{"a": 1}, s.table.Eq("a", 1).Filter())
	s.Equal(domain.Filter{"a": map[string]any{"$gte": 1}}, s.table.Gte("a", 1).Filter())
	s.Equal(domain.Filter{"a": map[string]any{"$gt": 1}}, s.table.Gt("a", 1).Filter())
	s.Equal(domain.Filter{"a": map[string]any{"$gt": 1}}, s.table.Count().Gt("a", 1).Filter())
}

func (s *QueryTestSuite) TestCompoundSort() {
	q := s.table.Order("age", false).Order("name", true)
	s.Equal(domain.Sort{{Key: "age", Order: -1}, {Key: "name", Order: 1}}, q.Sort())
	s.Empty(s.table.Select().Sort())
}

func (s *QueryTestSuite) TestImmutability() {
	b0 := s.table.Select()
	b1 := b0.Eq("x", 1)
	s.Equal(domain.Filter{}, b0.Filter())
	s.Equal(domain.Filter{"x": 1}, b1.Filter())

	// branches of a common prefix do not see each other
	b2 := b1.Eq("y", 2).Order("a", true)
	b3 := b1.Eq("z", 3).Order("b", false)
	s.Equal(domain.Filter{"x": 1, "y": 2}, b2.Filter())
	s.Equal(domain.Filter{"x": 1, "z": 3}, b3.Filter())
	s.Equal(domain.Sort{{Key: "a", Order: 1}}, b2.Sort())
	s.Equal(domain.Sort{{Key: "b", Order: -1}}, b3.Sort())
	s.Empty(b1.Sort())

	b4 := b2.Order("c", true)
	b5 := b2.Order("d", true)
	s.Equal("c", b4.Sort()[1].Key)
	s.Equal("d", b5.Sort()[1].Key)

	c0 := s.table.Count()
	c1 := c0.Eq("x", 1)
	s.Equal(domain.Filter{}, c0.Filter())
	s.Equal(domain.Filter{"x": 1}, c1.Filter())

	// re-running an unfiltered builder sends an unfiltered query
	cur := new(cursorMock)
	cur.On("All", mock.Anything).Return([]domain.Row{}, nil).Once()
	cur.On("Close").Return(nil).Once()
	s.coll.On("Find", mock.Anything, domain.Filter{}, mock.Anything).Return(cur, nil).Once()
	s.NoError(b0.Execute(ctx).Err())
}

func (s *QueryTestSuite) TestSelectColumns() {
	sel := s.table.Select("name", "age")
	s.Equal([]string{"name", "age"}, sel.Columns())
	s.Contains(s.logs.String(), "column selection is not enforced")

	s.logs.Reset()
	s.table.Select("*")
	s.table.Select()
	s.Empty(s.logs.String())
}

func (s *QueryTestSuite) TestSingle() {
	s.coll.On("FindOne", mock.Anything, domain.Filter{"id": "123"}, sorted(domain.Sort{{Key: "age", Order: -1}})).
		Return(domain.Row{"id": "123", "name": "Bob"}, nil).Once()

	res := s.table.Eq("id", "123").Order("age", false).Single(ctx)
	s.NoError(res.Err())
	s.Equal(domain.Row{"id": "123", "name": "Bob"}, res.Data)

	var user struct {
		Name string `doc:"name"`
	}
	s.NoError(res.Decode(&user))
	s.Equal("Bob", user.Name)
	s.Contains(s.logs.String(), "op=findOne")
}

func (s *QueryTestSuite) TestSingleNotFound() {
	s.coll.On("FindOne", mock.Anything, domain.Filter{"id": "missing"}, mock.Anything).Return(nil, nil).Once()
	res := s.table.Eq("id", "missing").Single(ctx)
	s.NoError(res.Err())
	s.Nil(res.Data)
}

func (s *QueryTestSuite) TestExecute() {
	rows := []domain.Row{{"id": 2, "age": 30}}
	cur := new(cursorMock)
	cur.On("All", mock.Anything).Return(rows, nil).Once()
	cur.On("Close").Return(nil).Once()
	s.coll.On("Find", mock.Anything, domain.Filter{"age": map[string]any{"$gte": 25}}, sorted(nil)).
		Return(cur, nil).Once()

	res := s.table.Gte("age", 25).Execute(ctx)
	s.NoError(res.Err())
	s.Equal(rows, res.Data)
	cur.AssertExpectations(s.T())
}

func (s *QueryTestSuite) TestExecuteEmpty() {
	cur := new(cursorMock)
	cur.On("All", mock.Anything).Return(nil, nil).Once()
	cur.On("Close").Return(nil).Once()
	s.coll.On("Find", mock.Anything, domain.Filter{}, mock.Anything).Return(cur, nil).Once()

	res := s.table.Execute(ctx)
	s.NoError(res.Err())
	s.NotNil(res.Data)
	s.Empty(res.Data)
}

func (s *QueryTestSuite) TestExecuteClosesCursor() {
	cur := new(cursorMock)
	cur.On("All", mock.Anything).Return(nil, context.Canceled).Once()
	cur.On("Close").Return(nil).Once()
	s.coll.On("Find", mock.Anything, domain.Filter{}, mock.Anything).Return(cur, nil).Once()

	res := s.table.Execute(ctx)
	s.assertFailure(res.Error, OpFind, context.Canceled)
	cur.AssertExpectations(s.T())
}

func (s *QueryTestSuite) TestFailure() {
	errConn := errors.New("connection refused")
	cur := new(cursorMock)
	cur.On("All", mock.Anything).Return(nil, errConn).Once()
	cur.On("Close").Return(nil).Once()
	s.coll.On("Find", mock.Anything, mock.Anything, mock.Anything).Return(cur, nil).Once()
	s.coll.On("FindOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, errConn).Once()
	s.coll.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), errConn).Once()
	s.coll.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(domain.UpdateResult{}, errConn).Once()
	s.coll.On("DeleteOne", mock.Anything, mock.Anything).Return(domain.DeleteResult{}, errConn).Once()
	s.coll.On("InsertOne", mock.Anything, mock.Anything).Return(domain.InsertOneResult{}, errConn).Once()

	list := s.table.Execute(ctx)
	s.Nil(list.Data)
	s.assertFailure(list.Error, OpFind, errConn)

	single := s.table.Single(ctx)
	s.Nil(single.Data)
	s.assertFailure(single.Error, OpFindOne, errConn)

	count := s.table.Count().Execute(ctx)
	s.Nil(count.Count)
	s.assertFailure(count.Error, OpCount, errConn)

	s.assertFailure(s.table.Update(M{"a": 1}).Eq(ctx, "id", 1).Error, OpUpdate, errConn)
	s.assertFailure(s.table.Delete().Eq(ctx, "id", 1).Error, OpDelete, errConn)

	ins := s.table.Insert(ctx, M{"a": 1})
	s.Nil(ins.Data)
	s.assertFailure(ins.Error, OpInsert, errConn)

	s.Contains(s.logs.String(), "level=WARN")
	s.Contains(s.logs.String(), "connection refused")
}

func (s *QueryTestSuite) assertFailure(err error, op string, cause error) {
	var f *domain.Failure
	s.Require().ErrorAs(err, &f)
	s.Equal(op, f.Op)
	s.Equal("users", f.Collection)
	s.ErrorIs(err, cause)
}

func (s *QueryTestSuite) TestCollectionFailure() {
	driver := new(driverMock)
	driver.On("Collection", mock.Anything, "users").Return(nil, domain.ErrDriverClosed).Once()
	res := NewTableQueryBuilder(driver, "users").Single(ctx)
	s.assertFailure(res.Error, OpFindOne, domain.ErrDriverClosed)
	driver.AssertExpectations(s.T())

	res = NewTableQueryBuilder(nil, "users").Single(ctx)
	s.assertFailure(res.Error, OpFindOne, domain.ErrNoDriver)
}

func (s *QueryTestSuite) TestPanicIsRecovered() {
	s.coll.On("CountDocuments", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("boom") }).Once()

	var res domain.CountResult
	s.NotPanics(func() { res = s.table.Count().Eq("active", true).Execute(ctx) })
	s.Nil(res.Count)
	s.assertFailure(res.Error, OpCount, domain.ErrDriverPanic)
	s.ErrorContains(res.Error, "boom")
}

func (s *QueryTestSuite) TestInsertNotFound() {
	s.coll.On("InsertOne", mock.Anything, M{"name": "Bob"}).Return(domain.InsertOneResult{InsertedID: "1"}, nil).Once()
	s.coll.On("FindOne", mock.Anything, domain.Filter{"_id": "1"}, mock.Anything).Return(nil, nil).Once()

	res := s.table.Insert(ctx, M{"name": "Bob"})
	s.Nil(res.Data)
	s.assertFailure(res.Error, OpInsert, domain.ErrInsertedNotFound)
}

func (s *QueryTestSuite) TestInsertInvalidData() {
	for _, data := range []any{nil, 1, "doc", []M{{}}, (*struct{})(nil), M(nil)} {
		res := s.table.Insert(ctx, data)
		s.ErrorAs(res.Error, &domain.ErrDocumentType{})
	}
	s.ErrorAs(s.table.Update(3).Eq(ctx, "a", 1).Error, &domain.ErrDocumentType{})
}

// Properties checked against the embedded store.

func (s *QueryTestSuite) TestGteScenario() {
	t := s.memTable("t", M{"id": 1, "age": 20}, M{"id": 2, "age": 30})
	res := t.Gte("age", 25).Execute(ctx)
	s.NoError(res.Err())
	s.Require().Len(res.Data, 1)
	s.Equal(2, res.Data[0]["id"])
	s.Equal(30, res.Data[0]["age"])
}

func (s *QueryTestSuite) TestSortedExecute() {
	t := s.memTable("users",
		M{"name": "b", "age": 30},
		M{"name": "a", "age": 30},
		M{"name": "c", "age": 20},
	)
	res := t.Order("age", false).Order("name", true).Execute(ctx)
	s.NoError(res.Err())
	names := make([]any, 0, len(res.Data))
	for _, row := range res.Data {
		names = append(names, row["name"])
	}
	s.Equal([]any{"a", "b", "c"}, names)
}

func (s *QueryTestSuite) TestNotFoundIsSuccess() {
	t := s.memTable("users", M{"id": "1"})
	res := t.Eq("id", "missing").Single(ctx)
	s.NoError(res.Err())
	s.Nil(res.Data)

	list := t.Eq("id", "missing").Execute(ctx)
	s.NoError(list.Err())
	s.Equal([]domain.Row{}, list.Data)
}

func (s *QueryTestSuite) TestCount() {
	t := s.memTable("users", M{"active": true}, M{"active": false}, M{"active": true})

	res := t.Count().Eq("active", true).Execute(ctx)
	s.NoError(res.Err())
	s.Require().NotNil(res.Count)
	s.Equal(int64(2), *res.Count)

	res = t.Count("id").Eq("active", "yes").Execute(ctx)
	s.NoError(res.Err())
	s.Require().NotNil(res.Count)
	s.Zero(*res.Count)
}

func (s *QueryTestSuite) TestInsertRoundTrip() {
	t := s.memTable("users")
	res := t.Insert(ctx, M{"name": "Bob"})
	s.NoError(res.Err())
	s.Equal("Bob", res.Data["name"])
	s.NotEmpty(res.Data["_id"])

	type user struct {
		Name string `doc:"name"`
		Age  int    `doc:"age"`
	}
	res = t.Insert(ctx, &user{Name: "Alice", Age: 30})
	s.NoError(res.Err())
	var got user
	s.NoError(res.Decode(&got))
	s.Equal(user{Name: "Alice", Age: 30}, got)

	res = t.Insert(ctx, map[string]string{"name": "Carol"})
	s.NoError(res.Err())
	s.Equal("Carol", res.Data["name"])
}

func (s *QueryTestSuite) TestScopedUpdate() {
	t := s.memTable("users",
		M{"_id": "a", "id": "123", "name": "Bob", "age": 40},
		M{"_id": "b", "id": "456", "name": "Bob", "age": 50},
	)
	res := t.Update(M{"name": "Bob2"}).Eq(ctx, "id", "123")
	s.NoError(res.Err())

	all := t.Order("id", true).Execute(ctx)
	s.NoError(all.Err())
	s.Equal([]domain.Row{
		{"_id": "a", "id": "123", "name": "Bob2", "age": 40},
		{"_id": "b", "id": "456", "name": "Bob", "age": 50},
	}, all.Data)

	// no match is not a failure
	s.NoError(t.Update(M{"name": "X"}).Eq(ctx, "id", "missing").Err())
}

func (s *QueryTestSuite) TestDelete() {
	t := s.memTable("users", M{"id": 1}, M{"id": 1}, M{"id": 2})
	s.NoError(t.Delete().Eq(ctx, "id", 1).Err())

	res := t.Count().Execute(ctx)
	s.NoError(res.Err())
	s.Equal(int64(2), res.Value())

	s.NoError(t.Delete().Eq(ctx, "id", 99).Err())
}

func (s *QueryTestSuite) TestInsertZeroID() {
	type user struct {
		ID   string `doc:"_id"`
		Name string `doc:"name"`
	}
	t := s.memTable("users")
	bob := t.Insert(ctx, user{Name: "Bob"})
	s.NoError(bob.Err())
	alice := t.Insert(ctx, &user{Name: "Alice"})
	s.NoError(alice.Err())

	var got user
	s.NoError(alice.Decode(&got))
	s.NotEmpty(got.ID)
	s.NotEmpty(bob.Data["_id"])
	s.NotEqual(bob.Data["_id"], alice.Data["_id"])
	s.Equal(int64(2), t.Count().Execute(ctx).Value())
}

func (s *QueryTestSuite) TestTypedFilterValues() {
	age := 30
	t := s.memTable("users", M{"tags": []string{"a", "b"}, "age": 30})

	s.Len(t.Eq("tags", []string{"a", "b"}).Execute(ctx).Data, 1)
	s.Len(t.Eq("age", &age).Execute(ctx).Data, 1)
	s.Len(t.Gte("age", &age).Execute(ctx).Data, 1)
	s.NotNil(t.Eq("age", &age).Single(ctx).Data)
	s.Equal(int64(1), t.Count().Eq("tags", []string{"a", "b"}).Execute(ctx).Value())
}

func (s *QueryTestSuite) TestNestedStructs() {
	type address struct {
		City string `doc:"city"`
	}
	type user struct {
		Name    string    `doc:"name"`
		Home    *address  `doc:"home"`
		Visited []address `doc:"visited"`
		Born    time.Time `doc:"born"`
	}
	born := time.Date(1990, 1, 2, 0, 0, 0, 0, time.UTC)
	t := s.memTable("users")

	res := t.Insert(ctx, user{Name: "Bob", Home: &address{City: "Lisbon"}, Visited: []address{{City: "Porto"}}, Born: born})
	s.NoError(res.Err())
	s.Equal(M{"city": "Lisbon"}, res.Data["home"])
	s.Equal(born, res.Data["born"])
	res = t.Insert(ctx, M{"name": "Alice", "home": address{City: "Faro"}})
	s.NoError(res.Err())

	s.Equal("Bob", t.Eq("home.city", "Lisbon").Single(ctx).Data["name"])
	s.Equal("Bob", t.Eq("visited", address{City: "Porto"}).Single(ctx).Data["name"])

	rows := t.Order("home", true).Execute(ctx)
	s.NoError(rows.Err())
	s.Equal("Alice", rows.Data[0]["name"])

	var got user
	s.NoError(t.Eq("name", "Bob").Single(ctx).Decode(&got))
	s.Equal("Lisbon", got.Home.City)
	s.True(born.Equal(got.Born))

	s.NoError(t.Update(M{"home": address{City: "Braga"}}).Eq(ctx, "name", "Alice").Err())
	s.Equal("Alice", t.Eq("home.city", "Braga").Single(ctx).Data["name"])
}

func (s *QueryTestSuite) TestDrop() {
	t := s.memTable("users", M{"id": 1}, M{"id": 2})
	res := t.Drop(ctx)
	s.NoError(res.Err())
	s.Equal(int64(0), t.Count().Execute(ctx).Value())

	// collections without the capability
	res = s.table.Drop(ctx)
	s.assertFailure(res.Error, OpDrop, domain.ErrUnsupported)
}

func (s *QueryTestSuite) TestConcurrentBranches() {
	t := s.memTable("users", M{"g": 1}, M{"g": 2}, M{"g": 2})
	base := t.Select()
	done := make(chan int64, 2)
	for _, g := range []int{1, 2} {
		go func() {
			done <- int64(len(base.Eq("g", g).Execute(ctx).Data))
		}()
	}
	s.ElementsMatch([]int64{1, 2}, []int64{<-done, <-done})
}

func TestQueryTestSuite(t *testing.T) {
	suite.Run(t, new(QueryTestSuite))
}
