package api

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/andrescamacho/warera-economy-go/internal/application/common"
	"github.com/andrescamacho/warera-economy-go/internal/domain/production"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
	"github.com/andrescamacho/warera-economy-go/pkg/utils"
)

const (
	minUpgradeLevel = 1
	maxUpgradeLevel = 7
	batchChunkSize  = 50
)

// CompanyLoader builds facility snapshots for a user's companies
type CompanyLoader struct {
	client  *Client
	regions *RegionDirectory
}

// NewCompanyLoader creates a loader backed by the API client and region directory
func NewCompanyLoader(client *Client, regions *RegionDirectory) *CompanyLoader {
	return &CompanyLoader{client: client, regions: regions}
}

// workerRef is one worker entry from worker.getWorkers
type workerRef struct {
	userID  string
	loyalty float64
	wage    float64
}

// companyRef is one workersPerCompany entry
type companyRef struct {
	id       string
	itemCode string
	workers  []workerRef
}

// FetchFacilities returns one FacilityParams per company the user works at or owns
func (l *CompanyLoader) FetchFacilities(ctx context.Context, userID string) ([]production.FacilityParams, error) {
	logger := common.LoggerFromContext(ctx)

	if userID == "" {
		return nil, nil
	}

	workersData, err := l.client.Query(ctx, "worker.getWorkers", map[string]string{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch workers: %w", err)
	}

	companies, workerIDs, itemCodes := collectCompanies(workersData.Get("workersPerCompany"))
	if len(companies) == 0 {
		return nil, nil
	}

	if l.regions != nil {
		l.regions.Ensure(ctx)
	}

	// Best-effort exact bonuses for recommended regions
	recommended := l.fetchRecommendedBonuses(ctx, itemCodes)

	companyIDs := make([]string, len(companies))
	for i, c := range companies {
		companyIDs[i] = c.id
	}

	var companyResults, profileResults []gjson.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		companyResults, err = l.batchByID(gctx, "company.getById", "companyId", companyIDs)
		return err
	})
	g.Go(func() error {
		var err error
		profileResults, err = l.batchByID(gctx, "user.getUserLite", "userId", workerIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to fetch company details: %w", err)
	}

	profiles := make(map[string]gjson.Result, len(workerIDs))
	for i, res := range profileResults {
		if res.Exists() {
			profiles[workerIDs[i]] = res
		}
	}

	facilities := make([]production.FacilityParams, 0, len(companies))
	for i, ref := range companies {
		detail := companyResults[i]
		if !detail.Exists() {
			continue
		}

		itemCode := detail.Get("itemCode").String()
		if itemCode == "" {
			logger.Log("WARNING", "Skipping company without product", map[string]interface{}{
				"company_id": ref.id,
			})
			continue
		}

		workers := make([]production.Worker, 0, len(ref.workers))
		for _, w := range ref.workers {
			profile, ok := profiles[w.userID]
			if !ok {
				continue
			}
			worker, err := workerFromProfile(w, profile)
			if err != nil {
				logger.Log("WARNING", "Skipping invalid worker", map[string]interface{}{
					"company_id": ref.id,
					"user_id":    w.userID,
					"error":      err.Error(),
				})
				continue
			}
			workers = append(workers, worker)
		}

		engine := int(detail.Get("activeUpgradeLevels.automatedEngine").Int())
		if !detail.Get("activeUpgradeLevels.automatedEngine").Exists() {
			engine = minUpgradeLevel
		}
		storage := int(detail.Get("activeUpgradeLevels.storage").Int())
		if !detail.Get("activeUpgradeLevels.storage").Exists() {
			storage = minUpgradeLevel
		}

		facilities = append(facilities, production.FacilityParams{
			ID:              detail.Get("_id").String(),
			Name:            detail.Get("name").String(),
			OutputItemID:    itemCode,
			AutomationLevel: utils.ClampInt(engine, minUpgradeLevel, maxUpgradeLevel),
			StorageLevel:    utils.ClampInt(storage, minUpgradeLevel, maxUpgradeLevel),
			ProductionBonus: shared.NewPercentage(l.productionBonus(detail, itemCode, recommended)),
			Workers:         workers,
			CurrentStock:    nonNegativeOrZero(detail.Get("production").Float()),
		})
	}

	logger.Log("INFO", "Loaded companies", map[string]interface{}{
		"user_id":   userID,
		"companies": len(facilities),
	})
	return facilities, nil
}

// collectCompanies flattens workersPerCompany into companies, unique worker ids and item codes
func collectCompanies(list gjson.Result) ([]companyRef, []string, []string) {
	var companies []companyRef
	var workerIDs, itemCodes []string
	seenWorkers := make(map[string]bool)
	seenItems := make(map[string]bool)

	for _, entry := range list.Array() {
		ref := companyRef{
			id:       entry.Get("company._id").String(),
			itemCode: entry.Get("company.itemCode").String(),
		}
		if ref.id == "" {
			continue
		}
		if ref.itemCode != "" && !seenItems[ref.itemCode] {
			seenItems[ref.itemCode] = true
			itemCodes = append(itemCodes, ref.itemCode)
		}
		for _, w := range entry.Get("workers").Array() {
			id := w.Get("user").String()
			if id == "" {
				continue
			}
			ref.workers = append(ref.workers, workerRef{
				userID:  id,
				loyalty: w.Get("fidelity").Float(),
				wage:    w.Get("wage").Float(),
			})
			if !seenWorkers[id] {
				seenWorkers[id] = true
				workerIDs = append(workerIDs, id)
			}
		}
		companies = append(companies, ref)
	}

	return companies, workerIDs, itemCodes
}

// batchByID runs one procedure per id in chunked batches, keeping id order
func (l *CompanyLoader) batchByID(ctx context.Context, procedure, field string, ids []string) ([]gjson.Result, error) {
	results := make([]gjson.Result, 0, len(ids))
	for _, chunk := range utils.Chunk(ids, batchChunkSize) {
		calls := make([]Call, len(chunk))
		for i, id := range chunk {
			calls[i] = Call{Procedure: procedure, Input: map[string]string{field: id}}
		}
		res, err := l.client.Batch(ctx, calls)
		if err != nil {
			return nil, err
		}
		results = append(results, res...)
	}
	return results, nil
}

// fetchRecommendedBonuses returns itemCode -> regionID -> bonus; failures yield an empty map
func (l *CompanyLoader) fetchRecommendedBonuses(ctx context.Context, itemCodes []string) map[string]map[string]float64 {
	bonuses := make(map[string]map[string]float64)
	if len(itemCodes) == 0 {
		return bonuses
	}

	results, err := l.batchByID(ctx, "company.getRecommendedRegionIdsByItemCode", "itemCode", itemCodes)
	if err != nil {
		common.LoggerFromContext(ctx).Log("WARNING", "Bonus fetch failed", map[string]interface{}{
			"error": err.Error(),
		})
		return bonuses
	}

	for i, res := range results {
		if !res.IsArray() {
			continue
		}
		byRegion := make(map[string]float64)
		for _, rec := range res.Array() {
			bonus := rec.Get("bonus")
			if regionID := rec.Get("regionId").String(); regionID != "" && bonus.Type == gjson.Number {
				byRegion[regionID] = bonus.Float()
			}
		}
		bonuses[itemCodes[i]] = byRegion
	}
	return bonuses
}

// productionBonus prefers the server's recommended-region bonus, else deposit plus strategic bonuses
func (l *CompanyLoader) productionBonus(detail gjson.Result, itemCode string, recommended map[string]map[string]float64) float64 {
	regionID := detail.Get("region").String()
	if byRegion, ok := recommended[itemCode]; ok {
		if bonus, ok := byRegion[regionID]; ok {
			return bonus
		}
	}

	if l.regions == nil {
		return 0
	}

	var bonus float64
	region, hasRegion := l.regions.Region(regionID)
	if hasRegion && region.DepositType == itemCode {
		if region.DepositBonus > 0 {
			bonus += region.DepositBonus
		} else {
			bonus += DefaultDepositBonus
		}
	}

	countryID := detail.Get("country").String()
	if hasRegion && region.CountryID != "" {
		countryID = region.CountryID
	}
	if country, ok := l.regions.Country(countryID); ok && country.SpecializedItem == itemCode {
		if country.StrategicBonus > 0 {
			bonus += country.StrategicBonus
		} else {
			bonus += DefaultStrategicBonus
		}
	}

	return bonus
}

// workerFromProfile derives energy and skill from the worker's skill levels
func workerFromProfile(ref workerRef, profile gjson.Result) (production.Worker, error) {
	energy := profile.Get("skills.energy.total").Float()
	if level := profile.Get("skills.energy.level"); level.Type == gjson.Number {
		energy = 30 + level.Float()*10
	} else if energy == 0 {
		energy = production.DefaultWorkerEnergy
	}

	skill := profile.Get("skills.production.total").Float()
	if level := profile.Get("skills.production.level"); level.Type == gjson.Number {
		skill = 10 + level.Float()*3
	} else if skill == 0 {
		skill = production.DefaultWorkerSkill
	}

	name := profile.Get("username").String()
	if name == "" {
		name = "Unknown"
	}

	return production.NewWorker(ref.userID, name, energy, skill, shared.NewPercentage(ref.loyalty), nonNegativeOrZero(ref.wage))
}

func nonNegativeOrZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
