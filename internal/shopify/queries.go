package shopify

// ProductPageSize is the fixed number of products requested for the grid.
const ProductPageSize = 9

const productFields = `
    id
    title
    handle
    descriptionHtml
    priceRange { minVariantPrice { amount currencyCode } }
    images(first: 5) { edges { node { url altText } } }
    variants(first: 1) { edges { node { id availableForSale quantityAvailable } } }
`

const ProductsQuery = `
query getProducts($first: Int!) {
  products(first: $first) {
    edges { node {` + productFields + `} }
  }
}`

const ProductByHandleQuery = `
query getProduct($handle: String!) {
  product(handle: $handle) {` + productFields + `}
}`

const cartFragment = `
fragment CartFragment on Cart {
  id
  checkoutUrl
  totalQuantity
  lines(first: 100) {
    edges {
      node {
        id
        quantity
        merchandise {
          ... on ProductVariant {
            id
            image { url }
            price { amount currencyCode }
            product { title }
          }
        }
      }
    }
  }
  cost { subtotalAmount { amount currencyCode } }
}`

const CartCreateMutation = `
mutation cartCreate {
  cartCreate {
    cart { ...CartFragment }
    userErrors { field message }
  }
}` + cartFragment

const CartQuery = `
query getCart($cartId: ID!) {
  cart(id: $cartId) { ...CartFragment }
}` + cartFragment

const CartLinesAddMutation = `
mutation cartLinesAdd($cartId: ID!, $lines: [CartLineInput!]!) {
  cartLinesAdd(cartId: $cartId, lines: $lines) {
    cart { ...CartFragment }
    userErrors { field message }
  }
}` + cartFragment

const CartLinesRemoveMutation = `
mutation cartLinesRemove($cartId: ID!, $lineIds: [ID!]!) {
  cartLinesRemove(cartId: $cartId, lineIds: $lineIds) {
    cart { ...CartFragment }
    userErrors { field message }
  }
}` + cartFragment
