// Package mongodb persists production cycles and their event streams. It
// implements both the engine's read-only RecordStore and the write-side
// Store used by the cycles service.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ovasconcelos/viveiro/internal/domain/models"
)

const (
	cyclesCollection      = "production_cycles"
	biometryCollection    = "biometry_samples"
	feedingsCollection    = "feeding_events"
	mortalitiesCollection = "mortality_events"
	inputsCollection      = "input_applications"
	harvestsCollection    = "harvest_events"
	opCostsCollection     = "operational_costs"
	farmReportsCollection = "farm_reports"
)

// Repository is the MongoDB-backed record store.
type Repository struct {
	client *mongo.Client
	dbName string
}

// NewRepository connects to MongoDB and verifies the connection.
func NewRepository(ctx context.Context, uri string, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri).SetRegistry(newRegistry())
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Repository{client: client, dbName: dbName}, nil
}

func (r *Repository) collection(name string) *mongo.Collection {
	return r.client.Database(r.dbName).Collection(name)
}

// CycleByID fetches one production cycle.
func (r *Repository) CycleByID(ctx context.Context, cycleID string) (models.ProductionCycle, error) {
	var cycle models.ProductionCycle
	err := r.collection(cyclesCollection).FindOne(ctx, bson.M{"_id": cycleID}).Decode(&cycle)
	if err != nil {
		return models.ProductionCycle{}, fmt.Errorf("find cycle %s: %w", cycleID, err)
	}
	return cycle, nil
}

// ActiveCycles lists every cycle still being farmed, for the allocation
// denominator and the farm-wide report.
func (r *Repository) ActiveCycles(ctx context.Context) ([]models.ProductionCycle, error) {
	cursor, err := r.collection(cyclesCollection).Find(ctx,
		bson.M{"status": models.CycleActive},
		options.Find().SetSort(bson.D{{Key: "stocking_date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find active cycles: %w", err)
	}

	var cycles []models.ProductionCycle
	if err := cursor.All(ctx, &cycles); err != nil {
		return nil, fmt.Errorf("decode active cycles: %w", err)
	}
	return cycles, nil
}

// BiometryByCycle returns the samples sorted by measurement date, ties by
// insertion time.
func (r *Repository) BiometryByCycle(ctx context.Context, cycleID string) ([]models.BiometrySample, error) {
	var samples []models.BiometrySample
	err := r.findByCycle(ctx, biometryCollection, cycleID, "measurement_date", &samples)
	return samples, err
}

// FeedingsByCycle returns feeding events sorted by feeding date.
func (r *Repository) FeedingsByCycle(ctx context.Context, cycleID string) ([]models.FeedingEvent, error) {
	var events []models.FeedingEvent
	err := r.findByCycle(ctx, feedingsCollection, cycleID, "feeding_date", &events)
	return events, err
}

// MortalitiesByCycle returns mortality events sorted by record date.
func (r *Repository) MortalitiesByCycle(ctx context.Context, cycleID string) ([]models.MortalityEvent, error) {
	var events []models.MortalityEvent
	err := r.findByCycle(ctx, mortalitiesCollection, cycleID, "record_date", &events)
	return events, err
}

// InputsByCycle returns input applications sorted by application date.
func (r *Repository) InputsByCycle(ctx context.Context, cycleID string) ([]models.InputApplicationEvent, error) {
	var events []models.InputApplicationEvent
	err := r.findByCycle(ctx, inputsCollection, cycleID, "application_date", &events)
	return events, err
}

// HarvestsByCycle returns harvest events sorted by harvest date.
func (r *Repository) HarvestsByCycle(ctx context.Context, cycleID string) ([]models.HarvestEvent, error) {
	var events []models.HarvestEvent
	err := r.findByCycle(ctx, harvestsCollection, cycleID, "harvest_date", &events)
	return events, err
}

// OperationalCostsByPeriod returns farm- and cycle-scoped cost entries
// dated inside the period, inclusive on both ends.
func (r *Repository) OperationalCostsByPeriod(ctx context.Context, start, end time.Time) ([]models.OperationalCostEntry, error) {
	cursor, err := r.collection(opCostsCollection).Find(ctx,
		bson.M{"cost_date": bson.M{"$gte": start, "$lte": end}},
		options.Find().SetSort(bson.D{{Key: "cost_date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find operational costs: %w", err)
	}

	var entries []models.OperationalCostEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode operational costs: %w", err)
	}
	return entries, nil
}

// InsertCycle persists a newly stocked cycle.
func (r *Repository) InsertCycle(ctx context.Context, cycle models.ProductionCycle) error {
	return r.insert(ctx, cyclesCollection, cycle)
}

// InsertBiometry appends a biometry sample.
func (r *Repository) InsertBiometry(ctx context.Context, sample models.BiometrySample) error {
	return r.insert(ctx, biometryCollection, sample)
}

// InsertFeeding appends a feeding event.
func (r *Repository) InsertFeeding(ctx context.Context, event models.FeedingEvent) error {
	return r.insert(ctx, feedingsCollection, event)
}

// InsertMortality appends a mortality event.
func (r *Repository) InsertMortality(ctx context.Context, event models.MortalityEvent) error {
	return r.insert(ctx, mortalitiesCollection, event)
}

// InsertInput appends an input application event.
func (r *Repository) InsertInput(ctx context.Context, event models.InputApplicationEvent) error {
	return r.insert(ctx, inputsCollection, event)
}

// InsertHarvest appends a harvest event.
func (r *Repository) InsertHarvest(ctx context.Context, event models.HarvestEvent) error {
	return r.insert(ctx, harvestsCollection, event)
}

// InsertOperationalCost appends a cost entry.
func (r *Repository) InsertOperationalCost(ctx context.Context, entry models.OperationalCostEntry) error {
	return r.insert(ctx, opCostsCollection, entry)
}

// UpdateCyclePopulation sets the materialized population counter and the
// cycle status in one update.
func (r *Repository) UpdateCyclePopulation(ctx context.Context, cycleID string, population int64, status models.CycleStatus) error {
	_, err := r.collection(cyclesCollection).UpdateByID(ctx, cycleID, bson.M{
		"$set": bson.M{
			"current_population": population,
			"status":             status,
		},
	})
	if err != nil {
		return fmt.Errorf("update cycle %s population: %w", cycleID, err)
	}
	return nil
}

// SaveFarmReport stores a nightly farm report snapshot.
func (r *Repository) SaveFarmReport(ctx context.Context, report models.FarmReport) error {
	return r.insert(ctx, farmReportsCollection, report)
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func (r *Repository) findByCycle(ctx context.Context, coll, cycleID, dateField string, out interface{}) error {
	cursor, err := r.collection(coll).Find(ctx,
		bson.M{"cycle_id": cycleID},
		options.Find().SetSort(bson.D{{Key: dateField, Value: 1}, {Key: "created_at", Value: 1}}))
	if err != nil {
		return fmt.Errorf("find %s for cycle %s: %w", coll, cycleID, err)
	}
	if err := cursor.All(ctx, out); err != nil {
		return fmt.Errorf("decode %s for cycle %s: %w", coll, cycleID, err)
	}
	return nil
}

func (r *Repository) insert(ctx context.Context, coll string, doc interface{}) error {
	if _, err := r.collection(coll).InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert into %s: %w", coll, err)
	}
	return nil
}
