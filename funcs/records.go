package funcs

import (
	"context"
	"slices"
	"time"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/store"
)

// RecordsBinding is the variable name under which a [store.Repository] is
// conventionally bound for use with [Records].
const RecordsBinding = "users"

// Records returns the user records library. Each function takes the
// repository as its first argument, normally the Ref bound to
// [RecordsBinding]. Records are returned as Maps with the fields name and
// birthDate (a YYYY-MM-DD String).
func Records() lang.Group {
	return lang.Group{
		Name: "records",
		Funcs: []lang.Func{
			define("findAll(users)", "every user record", findAll),
			define("bornBefore(users, date)", "users born before a YYYY-MM-DD date", bornBefore),
			define("oldest(users)", "the user with the earliest birth date", pick("oldest", -1)),
			define("youngest(users)", "the user with the latest birth date", pick("youngest", 1)),
		},
	}
}

func repository(name string, args []lang.Value) (store.Repository, error) {
	ref, ok := args[0].Ref()
	if !ok {
		return nil, mismatch(name, 0, "a user repository", args[0])
	}

	repo, ok := ref.(store.Repository)
	if !ok {
		return nil, lang.ErrTypeMismatch.Detailf(
			"%s: argument 1 must be a user repository, got %T", name, ref)
	}

	return repo, nil
}

func record(u store.User) lang.Value {
	return lang.NewMap([]string{"name", "birthDate"}, map[string]lang.Value{
		"name":      lang.NewString(u.Name),
		"birthDate": lang.NewString(u.BirthDate.Format(store.DateLayout)),
	})
}

func records(users []store.User) lang.Value {
	out := make([]lang.Value, len(users))
	for i, u := range users {
		out[i] = record(u)
	}

	return lang.NewList(out...)
}

func findAll(ctx context.Context, args []lang.Value) (lang.Value, error) {
	repo, err := repository("findAll", args)
	if err != nil {
		return lang.Value{}, err
	}

	users, err := repo.All(ctx)
	if err != nil {
		return lang.Value{}, unavailable(err)
	}

	return records(users), nil
}

func bornBefore(ctx context.Context, args []lang.Value) (lang.Value, error) {
	repo, err := repository("bornBefore", args)
	if err != nil {
		return lang.Value{}, err
	}

	s, err := text("bornBefore", args, 1)
	if err != nil {
		return lang.Value{}, err
	}

	date, err := time.Parse(store.DateLayout, s)
	if err != nil {
		return lang.Value{}, lang.ErrTypeMismatch.Detailf(
			"bornBefore: %q is not a YYYY-MM-DD date", s).Wrap(err)
	}

	users, err := repo.BornBefore(ctx, date)
	if err != nil {
		return lang.Value{}, unavailable(err)
	}

	return records(users), nil
}

// pick returns the user whose birth date compares with sign against every
// other; unit when the repository is empty.
func pick(name string, sign int) lang.Impl {
	return func(ctx context.Context, args []lang.Value) (lang.Value, error) {
		repo, err := repository(name, args)
		if err != nil {
			return lang.Value{}, err
		}

		users, err := repo.All(ctx)
		if err != nil {
			return lang.Value{}, unavailable(err)
		}

		if len(users) == 0 {
			return lang.Unit(), nil
		}

		cmp := func(a, b store.User) int { return sign * a.BirthDate.Compare(b.BirthDate) }

		return record(slices.MaxFunc(users, cmp)), nil
	}
}

func unavailable(err error) error {
	if lang.KindOf(err) == lang.KindServiceUnavailable {
		return err
	}

	return lang.ErrServiceUnavailable.Wrap(err)
}
