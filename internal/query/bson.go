package query

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ObjectIDParser converts hex tokens into Mongo ObjectIDs.
func ObjectIDParser(raw string) (any, error) {
	return primitive.ObjectIDFromHex(raw)
}

// BSON renders f as a Mongo filter document. An empty filter renders as {}.
func (f Filter) BSON() bson.M {
	if len(f) == 0 {
		return bson.M{}
	}
	and := make(bson.A, 0, len(f))
	for _, c := range f {
		and = append(and, ClauseBSON(c))
	}
	return bson.M{"$and": and}
}

// ClauseBSON renders a single clause.
func ClauseBSON(c Clause) bson.M {
	switch v := c.(type) {
	case Range:
		cond := bson.M{}
		if v.Gte != nil {
			cond["$gte"] = *v.Gte
		}
		if v.Lte != nil {
			cond["$lte"] = *v.Lte
		}
		return bson.M{v.Field: cond}
	case In:
		return bson.M{v.Field: bson.M{"$in": bson.A(v.Values)}}
	case Eq:
		return bson.M{v.Field: v.Value}
	case Match:
		return bson.M{v.Field: primitive.Regex{Pattern: v.Pattern, Options: "i"}}
	case Within:
		return bson.M{v.Field: bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{v.Lng, v.Lat}, v.Radius},
			},
		}}
	case AnyOf:
		return bson.M{"$or": clausesBSON(v)}
	case AllOf:
		return bson.M{"$and": clausesBSON(v)}
	default:
		return bson.M{}
	}
}

func clausesBSON(cs []Clause) bson.A {
	out := make(bson.A, 0, len(cs))
	for _, c := range cs {
		out = append(out, ClauseBSON(c))
	}
	return out
}

// FindOptions applies skip, limit and sort for a Mongo find. Ties on
// sortField are broken by _id in the same direction.
func (p PageParams) FindOptions(sortField string) *options.FindOptions {
	return options.Find().
		SetSkip(int64(p.Skip)).
		SetLimit(int64(p.Limit)).
		SetSort(bson.D{{Key: sortField, Value: p.Order}, {Key: "_id", Value: p.Order}})
}
