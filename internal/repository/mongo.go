package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/studyhub/studyhub-gobackend/internal/models"
)

// MongoStore implements all data access against a single MongoDB database.
type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) users() *mongo.Collection    { return s.db.Collection("users") }
func (s *MongoStore) courses() *mongo.Collection  { return s.db.Collection("courses") }
func (s *MongoStore) payments() *mongo.Collection { return s.db.Collection("payments") }

// EnsureIndexes creates the indexes the application relies on. The partial
// unique index on (transaction_id, course) for success rows is the safety net
// that rejects the second writer when the same capture event is delivered
// concurrently.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}

	_, err = s.courses().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create course indexes: %w", err)
	}

	_, err = s.payments().Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "transaction_id", Value: 1}, {Key: "course", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": models.PaymentStatusSuccess}),
		},
		{Keys: bson.D{{Key: "transaction_id", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create payment indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) InsertUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	user.ID = primitive.NewObjectID()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.EnrolledCourses == nil {
		user.EnrolledCourses = []primitive.ObjectID{}
	}

	if _, err := s.users().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, ErrDuplicate
		}
		return primitive.NilObjectID, err
	}
	return user.ID, nil
}

func (s *MongoStore) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := s.users().FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoStore) InsertCourse(ctx context.Context, course *models.Course) (primitive.ObjectID, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	course.ID = primitive.NewObjectID()
	now := time.Now()
	course.CreatedAt = now
	course.UpdatedAt = now
	if course.EnrolledStudents == nil {
		course.EnrolledStudents = []primitive.ObjectID{}
	}

	if _, err := s.courses().InsertOne(ctx, course); err != nil {
		return primitive.NilObjectID, err
	}
	return course.ID, nil
}

func (s *MongoStore) FindCourseByID(ctx context.Context, id primitive.ObjectID) (*models.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var course models.Course
	if err := s.courses().FindOne(ctx, bson.M{"_id": id}).Decode(&course); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &course, nil
}

func (s *MongoStore) FindCoursesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.courses().Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var courses []models.Course
	if err := cur.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *MongoStore) ListPublishedCourses(ctx context.Context) ([]models.Course, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cur, err := s.courses().Find(ctx,
		bson.M{"status": models.CourseStatusPublished},
		options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var courses []models.Course
	if err := cur.All(ctx, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

func (s *MongoStore) FindPaymentByTransactionID(ctx context.Context, transactionID string) (*models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var payment models.Payment
	if err := s.payments().FindOne(ctx, bson.M{"transaction_id": transactionID}).Decode(&payment); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (s *MongoStore) InsertPayment(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return insertPayment(ctx, s.payments(), payment)
}

func (s *MongoStore) ListPayments(ctx context.Context, filter PaymentFilter) ([]models.Payment, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := bson.M{}
	if filter.User != nil {
		query["user"] = *filter.User
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.From != nil && filter.To != nil {
		query["created_at"] = bson.M{"$gte": *filter.From, "$lte": *filter.To}
	}

	cur, err := s.payments().Find(ctx, query, options.Find().SetSort(bson.M{"created_at": -1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var payments []models.Payment
	if err := cur.All(ctx, &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// WithTransaction runs fn inside a multi-document transaction. The
// EnrollmentTx passed to fn is bound to the session; all of its writes commit
// or abort together.
func (s *MongoStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx EnrollmentTx) error) error {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &mongoTx{store: s})
	})
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// mongoTx issues writes against the session context threaded through the
// transaction callback.
type mongoTx struct {
	store *MongoStore
}

func (t *mongoTx) InsertPayment(ctx context.Context, payment *models.Payment) error {
	return insertPayment(ctx, t.store.payments(), payment)
}

func (t *mongoTx) AddEnrolledCourses(ctx context.Context, userID primitive.ObjectID, courseIDs []primitive.ObjectID) error {
	_, err := t.store.users().UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$addToSet": bson.M{"enrolled_courses": bson.M{"$each": courseIDs}},
			"$set":      bson.M{"updated_at": time.Now()},
		})
	return err
}

func (t *mongoTx) AddEnrolledStudent(ctx context.Context, courseID, userID primitive.ObjectID) error {
	_, err := t.store.courses().UpdateOne(ctx,
		bson.M{"_id": courseID},
		bson.M{
			"$addToSet": bson.M{"enrolled_students": userID},
			"$set":      bson.M{"updated_at": time.Now()},
		})
	return err
}

func insertPayment(ctx context.Context, coll *mongo.Collection, payment *models.Payment) error {
	payment.ID = primitive.NewObjectID()
	payment.CreatedAt = time.Now()
	if _, err := coll.InsertOne(ctx, payment); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}
