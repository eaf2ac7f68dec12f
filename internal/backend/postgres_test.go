package backend

import (
	"context"
	"testing"
	"time"

	"quitanda/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB creates a PostgreSQL testcontainer with the storefront
// schema and RPC functions installed, and returns a connection pool.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	createSchema(t, pool)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// createSchema installs the tables and the RPC functions the remote
// backend exposes.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	schema := `
		CREATE TABLE categoria (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			nome TEXT NOT NULL,
			imagem_url TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE produto (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			nome TEXT NOT NULL,
			preco NUMERIC(10,2) NOT NULL CHECK (preco >= 0),
			preco_oferta NUMERIC(10,2),
			is_oferta BOOLEAN NOT NULL DEFAULT FALSE,
			estoque INT NOT NULL DEFAULT 0,
			imagem_url TEXT NOT NULL DEFAULT '',
			categoria_id BIGINT NOT NULL REFERENCES categoria(id)
		);

		CREATE TABLE endereco (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			usuario_id UUID NOT NULL,
			apelido TEXT NOT NULL,
			cep TEXT NOT NULL,
			logradouro TEXT NOT NULL,
			numero TEXT NOT NULL,
			complemento TEXT,
			bairro TEXT NOT NULL,
			cidade TEXT NOT NULL,
			estado TEXT NOT NULL,
			data_criacao TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			data_ult_atualizacao TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE carrinho_item (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			usuario_id UUID NOT NULL,
			produto_id BIGINT NOT NULL REFERENCES produto(id),
			quantidade INT NOT NULL CHECK (quantidade >= 1),
			UNIQUE (usuario_id, produto_id)
		);

		CREATE TABLE favorito (
			usuario_id UUID NOT NULL,
			produto_id BIGINT NOT NULL REFERENCES produto(id),
			PRIMARY KEY (usuario_id, produto_id)
		);

		CREATE TABLE pedido (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			usuario_id UUID NOT NULL,
			endereco_id BIGINT NOT NULL REFERENCES endereco(id),
			status_id BIGINT NOT NULL DEFAULT 1,
			status_descricao TEXT NOT NULL DEFAULT 'Recebido',
			valor_total NUMERIC(10,2) NOT NULL,
			taxa_entrega NUMERIC(10,2) NOT NULL,
			metodo_pagamento TEXT NOT NULL,
			data_criacao TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE pedido_item (
			id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
			pedido_id BIGINT NOT NULL REFERENCES pedido(id),
			produto_id BIGINT NOT NULL REFERENCES produto(id),
			quantidade INT NOT NULL,
			preco_unitario NUMERIC(10,2) NOT NULL
		);
	`

	_, err := pool.Exec(ctx, schema)
	require.NoError(t, err)

	functions := []string{
		`CREATE FUNCTION get_cart_with_products(p_usuario UUID)
		RETURNS TABLE(
			item_id BIGINT, produto_id BIGINT, quantidade INT,
			nome TEXT, preco NUMERIC, preco_oferta NUMERIC, is_oferta BOOLEAN,
			estoque INT, imagem_url TEXT, categoria_id BIGINT
		) LANGUAGE sql AS $$
			SELECT c.id, c.produto_id, c.quantidade,
			       p.nome, p.preco, p.preco_oferta, p.is_oferta,
			       p.estoque, p.imagem_url, p.categoria_id
			FROM carrinho_item c
			JOIN produto p ON p.id = c.produto_id
			WHERE c.usuario_id = p_usuario
			ORDER BY c.id
		$$`,

		`CREATE FUNCTION add_to_cart(p_usuario UUID, p_produto BIGINT)
		RETURNS VOID LANGUAGE sql AS $$
			INSERT INTO carrinho_item (usuario_id, produto_id, quantidade)
			VALUES (p_usuario, p_produto, 1)
			ON CONFLICT (usuario_id, produto_id)
			DO UPDATE SET quantidade = carrinho_item.quantidade + 1
		$$`,

		`CREATE FUNCTION remove_from_cart(p_usuario UUID, p_item BIGINT)
		RETURNS VOID LANGUAGE sql AS $$
			DELETE FROM carrinho_item WHERE id = p_item AND usuario_id = p_usuario
		$$`,

		`CREATE FUNCTION update_cart_quantity(p_usuario UUID, p_item BIGINT, p_quantidade INT)
		RETURNS VOID LANGUAGE sql AS $$
			UPDATE carrinho_item SET quantidade = p_quantidade
			WHERE id = p_item AND usuario_id = p_usuario
		$$`,

		`CREATE FUNCTION criar_pedido_do_carrinho(
			p_usuario UUID, p_endereco BIGINT, p_metodo TEXT, p_taxa NUMERIC
		) RETURNS BIGINT LANGUAGE plpgsql AS $$
		DECLARE
			v_pedido_id BIGINT;
			v_total NUMERIC;
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM carrinho_item WHERE usuario_id = p_usuario) THEN
				RAISE EXCEPTION 'carrinho vazio';
			END IF;
			IF NOT EXISTS (SELECT 1 FROM endereco WHERE id = p_endereco AND usuario_id = p_usuario) THEN
				RAISE EXCEPTION 'endereco invalido';
			END IF;

			SELECT SUM(c.quantidade * COALESCE(
				CASE WHEN p.is_oferta THEN p.preco_oferta END, p.preco))
			INTO v_total
			FROM carrinho_item c JOIN produto p ON p.id = c.produto_id
			WHERE c.usuario_id = p_usuario;

			INSERT INTO pedido (usuario_id, endereco_id, valor_total, taxa_entrega, metodo_pagamento)
			VALUES (p_usuario, p_endereco, v_total + p_taxa, p_taxa, p_metodo)
			RETURNING id INTO v_pedido_id;

			INSERT INTO pedido_item (pedido_id, produto_id, quantidade, preco_unitario)
			SELECT v_pedido_id, c.produto_id, c.quantidade,
			       COALESCE(CASE WHEN p.is_oferta THEN p.preco_oferta END, p.preco)
			FROM carrinho_item c JOIN produto p ON p.id = c.produto_id
			WHERE c.usuario_id = p_usuario;

			DELETE FROM carrinho_item WHERE usuario_id = p_usuario;

			RETURN v_pedido_id;
		END
		$$`,

		`CREATE FUNCTION get_my_favorite_products(p_usuario UUID)
		RETURNS TABLE(
			id BIGINT, nome TEXT, preco NUMERIC, preco_oferta NUMERIC,
			is_oferta BOOLEAN, estoque INT, imagem_url TEXT, categoria_id BIGINT
		) LANGUAGE sql AS $$
			SELECT p.id, p.nome, p.preco, p.preco_oferta, p.is_oferta,
			       p.estoque, p.imagem_url, p.categoria_id
			FROM favorito f JOIN produto p ON p.id = f.produto_id
			WHERE f.usuario_id = p_usuario
			ORDER BY p.id
		$$`,

		`CREATE FUNCTION toggle_favorite(p_usuario UUID, p_produto BIGINT)
		RETURNS VOID LANGUAGE plpgsql AS $$
		BEGIN
			DELETE FROM favorito WHERE usuario_id = p_usuario AND produto_id = p_produto;
			IF NOT FOUND THEN
				INSERT INTO favorito (usuario_id, produto_id) VALUES (p_usuario, p_produto);
			END IF;
		END
		$$`,

		`CREATE FUNCTION get_my_pedidos(p_usuario UUID)
		RETURNS JSONB LANGUAGE sql AS $$
			SELECT COALESCE(jsonb_agg(pedido_json ORDER BY pedido_id DESC), '[]'::jsonb)
			FROM (
				SELECT o.id AS pedido_id, jsonb_build_object(
					'id', o.id,
					'statusId', o.status_id,
					'statusLabel', o.status_descricao,
					'total', o.valor_total,
					'deliveryFee', o.taxa_entrega,
					'paymentMethod', o.metodo_pagamento,
					'createdAt', o.data_criacao,
					'address', jsonb_build_object(
						'id', e.id,
						'userId', e.usuario_id,
						'label', e.apelido,
						'cep', e.cep,
						'street', e.logradouro,
						'number', e.numero,
						'complement', COALESCE(e.complemento, ''),
						'neighborhood', e.bairro,
						'city', e.cidade,
						'state', e.estado,
						'createdAt', e.data_criacao,
						'updatedAt', e.data_ult_atualizacao
					),
					'items', (
						SELECT COALESCE(jsonb_agg(jsonb_build_object(
							'id', i.id,
							'quantity', i.quantidade,
							'unitPrice', i.preco_unitario,
							'product', jsonb_build_object(
								'id', p.id,
								'name', p.nome,
								'price', p.preco,
								'promoPrice', p.preco_oferta,
								'isPromo', p.is_oferta,
								'stock', p.estoque,
								'imageUrl', p.imagem_url,
								'categoryId', p.categoria_id
							)
						) ORDER BY i.id), '[]'::jsonb)
						FROM pedido_item i JOIN produto p ON p.id = i.produto_id
						WHERE i.pedido_id = o.id
					)
				) AS pedido_json
				FROM pedido o JOIN endereco e ON e.id = o.endereco_id
				WHERE o.usuario_id = p_usuario
			) sub
		$$`,
	}

	for _, fn := range functions {
		_, err := pool.Exec(ctx, fn)
		require.NoError(t, err)
	}
}

// seedCatalog inserts a category and two products, one of them on
// promotion, and returns the product ids.
func seedCatalog(t *testing.T, pool *pgxpool.Pool) (int64, int64) {
	t.Helper()
	ctx := context.Background()

	var categoryID int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO categoria (nome) VALUES ('Hortifruti') RETURNING id`).Scan(&categoryID))

	var tomatoID, onionID int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO produto (nome, preco, estoque, categoria_id) VALUES ('Tomate', 8.99, 50, $1) RETURNING id`,
		categoryID).Scan(&tomatoID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO produto (nome, preco, preco_oferta, is_oferta, estoque, categoria_id)
		 VALUES ('Cebola', 5.49, 4.99, TRUE, 30, $1) RETURNING id`,
		categoryID).Scan(&onionID))

	return tomatoID, onionID
}

func seedAddress(t *testing.T, pool *pgxpool.Pool, userID uuid.UUID) int64 {
	t.Helper()

	var addressID int64
	require.NoError(t, pool.QueryRow(context.Background(),
		`INSERT INTO endereco (usuario_id, apelido, cep, logradouro, numero, bairro, cidade, estado)
		 VALUES ($1, 'Casa', '23575100', 'Rua A', '10', 'Campo Grande', 'Rio de Janeiro', 'RJ')
		 RETURNING id`, userID).Scan(&addressID))
	return addressID
}

func TestCartBackend_AddFetchUpdateRemove(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	tomatoID, onionID := seedCatalog(t, pool)
	userID := uuid.New()
	ctx := context.Background()

	cart := NewCartBackend(pool, zerolog.Nop())

	// Two adds of the same product merge into one row.
	require.NoError(t, cart.AddToCart(ctx, userID, tomatoID))
	require.NoError(t, cart.AddToCart(ctx, userID, tomatoID))
	require.NoError(t, cart.AddToCart(ctx, userID, onionID))

	items, err := cart.FetchCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, tomatoID, items[0].ProductID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, "Tomate", items[0].Product.Name)
	assert.True(t, items[0].Product.Price.Equal(decimal.RequireFromString("8.99")))

	assert.True(t, items[1].Product.IsPromo)
	require.NotNil(t, items[1].Product.PromoPrice)
	assert.True(t, items[1].Product.PromoPrice.Equal(decimal.RequireFromString("4.99")))

	require.NoError(t, cart.UpdateQuantity(ctx, userID, items[0].ID, 5))
	items, err = cart.FetchCart(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 5, items[0].Quantity)

	require.NoError(t, cart.RemoveFromCart(ctx, userID, items[0].ID))
	items, err = cart.FetchCart(ctx, userID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, onionID, items[0].ProductID)
}

func TestCartBackend_CartsAreScopedPerUser(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	tomatoID, _ := seedCatalog(t, pool)
	ctx := context.Background()

	cart := NewCartBackend(pool, zerolog.Nop())
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, cart.AddToCart(ctx, alice, tomatoID))

	items, err := cart.FetchCart(ctx, bob)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCartBackend_CreateOrderFromCart(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	tomatoID, onionID := seedCatalog(t, pool)
	userID := uuid.New()
	addressID := seedAddress(t, pool, userID)
	ctx := context.Background()

	cart := NewCartBackend(pool, zerolog.Nop())
	require.NoError(t, cart.AddToCart(ctx, userID, tomatoID))
	require.NoError(t, cart.AddToCart(ctx, userID, tomatoID))
	require.NoError(t, cart.AddToCart(ctx, userID, onionID))

	orderID, err := cart.CreateOrderFromCart(ctx, userID, addressID, "pix", decimal.RequireFromString("8.00"))
	require.NoError(t, err)
	assert.Positive(t, orderID)

	// The backend cart is cleared atomically with order creation.
	items, err := cart.FetchCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, items)

	orders := NewOrdersBackend(pool, zerolog.Nop())
	history, err := orders.FetchOrders(ctx, userID)
	require.NoError(t, err)
	require.Len(t, history, 1)

	order := history[0]
	assert.Equal(t, orderID, order.ID)
	// 8.99*2 + 4.99 (promo price) + 8.00 fee.
	assert.True(t, order.Total.Equal(decimal.RequireFromString("30.97")), "got %s", order.Total)
	assert.Equal(t, "pix", order.PaymentMethod)
	assert.Equal(t, "Casa", order.Address.Label)
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[1].UnitPrice.Equal(decimal.RequireFromString("4.99")))
}

func TestCartBackend_CreateOrderFailsOnEmptyCart(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	seedCatalog(t, pool)
	userID := uuid.New()
	addressID := seedAddress(t, pool, userID)

	cart := NewCartBackend(pool, zerolog.Nop())

	_, err := cart.CreateOrderFromCart(context.Background(), userID, addressID, "pix", decimal.Zero)

	assert.Error(t, err)
}

func TestCartBackend_CreateOrderRejectsForeignAddress(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	tomatoID, _ := seedCatalog(t, pool)
	userID := uuid.New()
	otherAddress := seedAddress(t, pool, uuid.New())
	ctx := context.Background()

	cart := NewCartBackend(pool, zerolog.Nop())
	require.NoError(t, cart.AddToCart(ctx, userID, tomatoID))

	_, err := cart.CreateOrderFromCart(ctx, userID, otherAddress, "pix", decimal.Zero)

	assert.Error(t, err)
}

func TestFavoritesBackend_Toggle(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	tomatoID, _ := seedCatalog(t, pool)
	userID := uuid.New()
	ctx := context.Background()

	favorites := NewFavoritesBackend(pool, zerolog.Nop())

	require.NoError(t, favorites.ToggleFavorite(ctx, userID, tomatoID))
	products, err := favorites.FetchFavorites(ctx, userID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Tomate", products[0].Name)

	require.NoError(t, favorites.ToggleFavorite(ctx, userID, tomatoID))
	products, err = favorites.FetchFavorites(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestAddressBackend_CRUD(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	userID := uuid.New()
	ctx := context.Background()

	addresses := NewAddressBackend(pool, zerolog.Nop())

	first, err := addresses.Create(ctx, model.Address{
		UserID:       userID,
		Label:        "Casa",
		CEP:          "23575100",
		Street:       "Rua A",
		Number:       "10",
		Neighborhood: "Campo Grande",
		City:         "Rio de Janeiro",
		State:        "RJ",
	})
	require.NoError(t, err)
	assert.Positive(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	second, err := addresses.Create(ctx, model.Address{
		UserID:       userID,
		Label:        "Trabalho",
		CEP:          "20040020",
		Street:       "Av Rio Branco",
		Number:       "1",
		Neighborhood: "Centro",
		City:         "Rio de Janeiro",
		State:        "RJ",
	})
	require.NoError(t, err)

	// Most recently created first.
	list, err := addresses.ListByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	label := "Outro"
	updated, err := addresses.Update(ctx, first.ID, model.AddressPatch{Label: &label})
	require.NoError(t, err)
	assert.Equal(t, "Outro", updated.Label)
	assert.Equal(t, "Rua A", updated.Street)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))

	got, err := addresses.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Outro", got.Label)

	require.NoError(t, addresses.Delete(ctx, first.ID))

	_, err = addresses.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = addresses.Delete(ctx, first.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCatalogBackend_Queries(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	_, onionID := seedCatalog(t, pool)
	ctx := context.Background()

	catalog := NewCatalogBackend(pool, zerolog.Nop())

	promos, err := catalog.Promotions(ctx)
	require.NoError(t, err)
	require.Len(t, promos, 1)
	assert.Equal(t, onionID, promos[0].ID)
	assert.True(t, promos[0].EffectivePrice().Equal(decimal.RequireFromString("4.99")))

	categories, err := catalog.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)

	products, err := catalog.ProductsByCategory(ctx, categories[0].ID)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestOrdersBackend_EmptyHistory(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	orders := NewOrdersBackend(pool, zerolog.Nop())

	history, err := orders.FetchOrders(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Empty(t, history)
}
