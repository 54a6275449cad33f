package domain

// ClientRepository описывает требования к хранилищу клиентов.
type ClientRepository interface {
	// Create сохраняет нового клиента и возвращает его с выданным ID и датой регистрации.
	// Возвращает ErrEmailTaken при нарушении уникальности email.
	Create(client Client) (Client, error)
	// Get возвращает клиента по идентификатору или ErrClientNotFound.
	Get(id int64) (Client, error)
	// FindByTerm ищет по точному id-как-тексту либо по подстроке имени без учёта регистра.
	FindByTerm(term string) ([]Client, error)
	// List возвращает всех клиентов в порядке возрастания id.
	List() ([]Client, error)
}

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	Create(product Product) (Product, error)
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(id int64) (Product, error)
	// FindByTerm ищет по точному id-как-тексту либо по подстроке описания.
	FindByTerm(term string) ([]Product, error)
	List() ([]Product, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Place атомарно списывает остатки по каждой строке и сохраняет заказ
	// с позициями как одну транзакцию. Цена позиции фиксируется внутри той же
	// транзакции. Любая ошибка откатывает всё: ни списаний, ни заказа.
	// Возвращает *ProductNotFoundError и *InsufficientStockError по строкам.
	Place(clientID int64, lines []OrderLine) (Order, error)
	// Get возвращает заказ с позициями или ErrOrderNotFound.
	Get(id int64) (Order, error)
	// Search выполняет агрегирующий запрос по включённым фильтрам (AND);
	// выключенный фильтр не исключает строк.
	Search(filter SearchFilter) ([]OrderSummary, error)
}
