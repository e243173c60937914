package products

import (
	"fmt"
	"strings"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10

	productColumns = `id, name, description, price, stock`
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// whereClause builds the conjunctive filter shared by the count and page
// queries. Placeholders start at $1.
func whereClause(f Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Name != "" {
		add("name ILIKE $%d", "%"+likeEscaper.Replace(f.Name)+"%")
	}
	if f.MinPrice != nil {
		add("price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("price <= $%d", *f.MaxPrice)
	}
	if f.MinStock != nil {
		add("stock >= $%d", *f.MinStock)
	}
	if f.MaxStock != nil {
		add("stock <= $%d", *f.MaxStock)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func countQuery(f Filter) (string, []any) {
	where, args := whereClause(f)
	return `SELECT COUNT(*) FROM products` + where, args
}

// pageQuery orders by id so pages do not overlap between requests.
func pageQuery(f Filter) (string, []any) {
	where, args := whereClause(f)
	n := len(args)
	args = append(args, f.PageSize, (f.Page-1)*f.PageSize)
	q := fmt.Sprintf(`SELECT %s FROM products%s ORDER BY id LIMIT $%d OFFSET $%d`, productColumns, where, n+1, n+2)
	return q, args
}

// updateQuery returns ok=false when the patch carries no fields.
func updateQuery(id int64, p Patch) (string, []any, bool) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if p.Name != nil {
		set("name", *p.Name)
	}
	if p.Description.Set {
		set("description", p.Description.Value)
	}
	if p.Price != nil {
		set("price", *p.Price)
	}
	if p.Stock != nil {
		set("stock", *p.Stock)
	}
	if len(sets) == 0 {
		return "", nil, false
	}

	args = append(args, id)
	q := fmt.Sprintf(`UPDATE products SET %s WHERE id = $%d RETURNING %s`, strings.Join(sets, ", "), len(args), productColumns)
	return q, args, true
}
