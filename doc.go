// Package searchsync keeps a hosted search index in step with the content
// of a statically generated site.
//
// A sync run ensures the remote index matches a Definition, runs every
// configured query against the site's content graph, shapes each result
// into flat documents and uploads them in one batch per query.
//
// # Index and upload
//
//	client, _ := searchsync.New(searchsync.WithService("my-search", adminKey))
//	_ = client.ApplyIndex(ctx, def)
//	_, _ = client.Publish(ctx, def.Name, docs)
//
// # Full run
//
//	graph, _ := searchsync.NewGraphClient("http://localhost:8000/___graphql")
//	report, err := client.Sync(ctx, graph, def,
//	    searchsync.Query{Name: "posts", Query: postsQuery, Transform: postsToDocs},
//	)
//
// # Schema-first with Go generics
//
//	type Post struct {
//	    Slug  string    `search:"slug,key,retrievable,sortable"`
//	    Title string    `search:"title,searchable,retrievable,analyzer=zh-Hans.lucene"`
//	    Date  time.Time `search:"date,retrievable,sortable"`
//	    Tags  []string  `search:"tags,searchable,filterable,retrievable"`
//	}
//
//	idx, _ := searchsync.NewIndex[Post]("site")
//	q := searchsync.TypedQuery(idx, "posts", postsQuery,
//	    func(ctx context.Context, data postsData) ([]Post, error) { ... })
//	report, err := client.Sync(ctx, graph, idx.Definition(), q)
package searchsync
