package criteria

// Operator operador de comparación de un filtro
type Operator string

const (
	OpEqual              Operator = "="
	OpNotEqual           Operator = "!="
	OpGreaterThan        Operator = ">"
	OpGreaterThanOrEqual Operator = ">="
	OpLessThan           Operator = "<"
	OpLessThanOrEqual    Operator = "<="
	OpIsNull             Operator = "NULL"
	OpIsNotNull          Operator = "NOT NULL"
)

// OrderType dirección de ordenamiento
type OrderType string

const (
	ASC  OrderType = "ASC"
	DESC OrderType = "DESC"
)

// Filter condición sobre un campo
type Filter struct {
	Field    string
	Operator Operator
	Value    interface{}
}

// Filters conjunto de filtros unidos con AND
type Filters struct {
	Items []Filter
}

// NewFilters crea un conjunto vacío
func NewFilters() Filters {
	return Filters{}
}

// Add agrega un filtro
func (f *Filters) Add(filter Filter) {
	f.Items = append(f.Items, filter)
}

// IsEmpty indica si no hay filtros
func (f Filters) IsEmpty() bool {
	return len(f.Items) == 0
}

// Order ordenamiento de la consulta
type Order struct {
	Field     string
	OrderType OrderType
}

// NewOrder crea un ordenamiento
func NewOrder(field string, orderType OrderType) Order {
	return Order{Field: field, OrderType: orderType}
}

// IsEmpty indica si no hay ordenamiento
func (o Order) IsEmpty() bool {
	return o.Field == ""
}

// Criteria filtros, orden y paginación de una búsqueda
type Criteria struct {
	Filters Filters
	Order   Order
	Limit   *int
	Offset  *int
}

// NewCriteria crea un criteria
func NewCriteria(filters Filters, order Order, limit, offset *int) Criteria {
	return Criteria{Filters: filters, Order: order, Limit: limit, Offset: offset}
}

// CriteriaBuilder construye un Criteria paso a paso
type CriteriaBuilder struct {
	filters Filters
	order   Order
	limit   *int
	offset  *int
}

// NewCriteriaBuilder crea un builder vacío
func NewCriteriaBuilder() *CriteriaBuilder {
	return &CriteriaBuilder{filters: NewFilters()}
}

// Where agrega un filtro
func (b *CriteriaBuilder) Where(field string, op Operator, value interface{}) *CriteriaBuilder {
	b.filters.Add(Filter{Field: field, Operator: op, Value: value})
	return b
}

// OrderBy define el ordenamiento
func (b *CriteriaBuilder) OrderBy(field string, orderType OrderType) *CriteriaBuilder {
	b.order = NewOrder(field, orderType)
	return b
}

// Paginate convierte página (desde 1) y tamaño en LIMIT/OFFSET
func (b *CriteriaBuilder) Paginate(page, pageSize int) *CriteriaBuilder {
	if page < 1 {
		page = 1
	}
	limit := pageSize
	offset := (page - 1) * pageSize
	b.limit = &limit
	b.offset = &offset
	return b
}

// Build devuelve el criteria final
func (b *CriteriaBuilder) Build() Criteria {
	return NewCriteria(b.filters, b.order, b.limit, b.offset)
}

// Page número de página (desde 1) según LIMIT/OFFSET; 1 sin paginación
func (c Criteria) Page() int {
	if c.Limit == nil || c.Offset == nil || *c.Limit <= 0 {
		return 1
	}
	return *c.Offset / *c.Limit + 1
}

// WithFilter devuelve una copia con un filtro más
func (c Criteria) WithFilter(filter Filter) Criteria {
	items := make([]Filter, 0, len(c.Filters.Items)+1)
	items = append(items, c.Filters.Items...)
	items = append(items, filter)
	c.Filters = Filters{Items: items}
	return c
}
