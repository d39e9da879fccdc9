package main

import (
	"context"
	"time"

	"sweetshop/internal/config"
	"sweetshop/internal/domain/model"
	"sweetshop/internal/handler"
	"sweetshop/internal/infra/db"
	infraRepo "sweetshop/internal/infra/repository"
	"sweetshop/internal/repository"
	"sweetshop/internal/server"
	"sweetshop/internal/usecase"
	auth "sweetshop/internal/usecase/auth_usecase"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

// accesstokenの有効期限
const accessTokenTTL = 15 * time.Minute

func main() {
	log.SetFormatter(&log.JSONFormatter{})

	//.envは任意（なければ環境変数だけで動く）
	if err := godotenv.Load(); err != nil {
		log.Debug(".env not loaded")
	}

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	//Repository生成（postgres / memory）
	var (
		sweetRepo     repository.SweetRepository
		inventoryRepo repository.InventoryRepository
		userRepo      repository.UserRepository
		auditRepo     repository.AuditLogRepository
	)

	switch cfg.Store {
	case config.StoreMemory:
		store := infraRepo.NewMemoryStore()
		sweetRepo = store
		inventoryRepo = store
		userRepo = store.Users()
		auditRepo = store.AuditLogs()
		log.Warn("using in-memory store, data is not persisted")

	default:
		gormDB, err := db.Connect(cfg)
		if err != nil {
			log.WithError(err).Fatal("failed to connect to database")
		}
		if err := gormDB.AutoMigrate(
			&model.User{},
			&model.Sweet{},
			&model.AuditLog{},
		); err != nil {
			log.WithError(err).Fatal("failed to migrate database")
		}

		sweetRepo = infraRepo.NewSweetGormRepository(gormDB)
		inventoryRepo = infraRepo.NewInventoryGormRepository(gormDB)
		userRepo = infraRepo.NewUserGormRepository(gormDB)
		auditRepo = infraRepo.NewAuditLogGormRepository(gormDB)
	}

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := auth.NewJWTIssuer(cfg.JWTSecret, accessTokenTTL)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, idGen, clock)
	loginUC := auth.NewLoginUsecase(userRepo, verifier, issuer, clock)
	sweetUC := usecase.NewSweetUsecase(sweetRepo, inventoryRepo, auditRepo, idGen, clock)

	//devのときだけサンプルデータを投入する
	if cfg.GoEnv == "dev" {
		seedDevData(userRepo, sweetRepo, hasher, idGen)
	}

	//Handler生成
	authH := handler.NewAuthHandler(registerUC, loginUC)
	sweetH := handler.NewSweetHandler(sweetUC)

	//Server起動
	addr := ":" + cfg.Port
	log.WithFields(log.Fields{"addr": addr, "store": cfg.Store}).Info("starting server")

	if err := server.Start(addr, cfg, authH, sweetH); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

// 開発用の初期データ。既にあれば何もしない。
func seedDevData(
	userRepo repository.UserRepository,
	sweetRepo repository.SweetRepository,
	hasher auth.PasswordHasher,
	idGen usecase.IDGenerator,
) {
	ctx := context.Background()

	seedUser := func(username, email, password string, role model.Role) {
		if _, err := userRepo.FindByUsername(ctx, username); err == nil {
			return
		}
		hash, err := hasher.Hash(password)
		if err != nil {
			log.WithError(err).Warn("seed: hash failed")
			return
		}
		now := time.Now()
		err = userRepo.Create(ctx, &model.User{
			ID:           idGen.NewID(),
			Username:     username,
			Email:        email,
			PasswordHash: hash,
			Role:         role,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			log.WithError(err).WithField("username", username).Warn("seed: user create failed")
			return
		}
		log.WithFields(log.Fields{"username": username, "role": role}).Info("seed: user created")
	}

	seedUser("admin", "admin@sweetshop.local", "admin12345", model.RoleAdmin)
	seedUser("customer", "customer@sweetshop.local", "customer12345", model.RoleCustomer)

	existing, err := sweetRepo.List(ctx)
	if err != nil || len(existing) > 0 {
		return
	}

	now := time.Now()
	samples := []model.Sweet{
		{Name: "Milk Chocolate Bar", Category: model.CategoryChocolate, Price: 2.50, Quantity: 100, Description: "Creamy milk chocolate bar"},
		{Name: "Strawberry Gummies", Category: model.CategoryGummy, Price: 3.00, Quantity: 150, Description: "Chewy strawberry flavored gummies"},
		{Name: "Caramel Toffee", Category: model.CategoryCandy, Price: 1.75, Quantity: 80, Description: "Rich buttery caramel toffee"},
		{Name: "Butter Cookies", Category: model.CategoryCookie, Price: 1.50, Quantity: 200, Description: "Crisp butter cookies"},
		{Name: "Dark Chocolate Truffle", Category: model.CategoryChocolate, Price: 4.50, Quantity: 50, Description: "Premium dark chocolate truffle"},
	}
	for _, s := range samples {
		s.ID = idGen.NewID()
		s.CreatedAt = now
		s.UpdatedAt = now
		if _, err := sweetRepo.Create(ctx, s); err != nil {
			log.WithError(err).WithField("name", s.Name).Warn("seed: sweet create failed")
		}
	}
	log.WithField("count", len(samples)).Info("seed: sample sweets created")
}
