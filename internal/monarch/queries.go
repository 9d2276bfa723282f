package monarch

// GraphQL documents for the Monarch Money API. Field selections cover what
// the tool layer shapes for display; the API tolerates narrower selections
// than its web client requests.

const queryGetAccounts = `
query GetAccounts {
  accounts {
    id
    name
    displayName
    currentBalance
    isActive
    deactivatedAt
    type { name }
    institution { name }
  }
}`

const queryGetTransactions = `
query GetTransactionsList($offset: Int, $limit: Int, $filters: TransactionFilterInput) {
  allTransactions(filters: $filters) {
    totalCount
    results(offset: $offset, limit: $limit) {
      id
      date
      amount
      plaidName
      notes
      pending
      isRecurring
      category { id name }
      account { id displayName }
      merchant { id name }
      tags { id name color }
    }
  }
}`

const queryGetBudgets = `
query GetJointPlanningData($startDate: Date!, $endDate: Date!) {
  budgetData(startMonth: $startDate, endMonth: $endDate) {
    monthlyAmountsByCategory {
      category { id name }
      monthlyAmounts { month plannedCashFlowAmount actualAmount remainingAmount }
    }
  }
}`

const queryGetCashflow = `
query GetCashFlow($filters: TransactionFilterInput) {
  summary: aggregates(filters: $filters, fillEmptyValues: true) {
    summary { sumIncome sumExpense savings savingsRate }
  }
  byCategory: aggregates(filters: $filters, groupBy: ["category"]) {
    groupBy { category { id name } }
    summary { sum }
  }
}`

const queryGetAccountHoldings = `
query Web_GetHoldings($input: PortfolioInput) {
  portfolio(input: $input) {
    aggregateHoldings {
      edges {
        node {
          id
          quantity
          basis
          totalValue
          securityPriceChangeDollars
          holdings { id name ticker closingPrice quantity value }
        }
      }
    }
  }
}`

const mutationCreateTransaction = `
mutation Common_CreateTransactionMutation($input: CreateTransactionMutationInput!) {
  createTransaction(input: $input) {
    transaction { id }
    errors { message }
  }
}`

const mutationUpdateTransaction = `
mutation Web_TransactionDrawerUpdateTransaction($input: UpdateTransactionMutationInput!) {
  updateTransaction(input: $input) {
    transaction { id amount date notes hideFromReports needsReview
      category { id name } merchant { id name } }
    errors { message }
  }
}`

const mutationDeleteTransaction = `
mutation Common_DeleteTransactionMutation($input: DeleteTransactionMutationInput!) {
  deleteTransaction(input: $input) {
    deleted
    errors { message }
  }
}`

const mutationRequestAccountsRefresh = `
mutation Common_ForceRefreshAccountsMutation($input: ForceRefreshAccountsInput!) {
  forceRefreshAccounts(input: $input) {
    success
    errors { message }
  }
}`

const queryAccountsRefreshComplete = `
query ForceRefreshAccountsQuery($accountIds: [String]) {
  accounts(filters: { accountIds: $accountIds }) {
    id
    hasSyncInProgress
  }
}`

const queryGetTransactionTags = `
query GetHouseholdTransactionTags {
  householdTransactionTags {
    id
    name
    color
    order
    transactionCount
  }
}`

const mutationCreateTransactionTag = `
mutation Common_CreateTransactionTag($name: String!, $color: String!) {
  createTransactionTag(input: { name: $name, color: $color }) {
    tag { id name color order }
    errors { message }
  }
}`

// MutationDeleteTransactionTag removes a household transaction tag. Exported
// because the tool layer issues it through GQLCall directly.
const MutationDeleteTransactionTag = `
mutation Common_DeleteTransactionTag($tagId: ID!) {
  deleteTransactionTag(tagId: $tagId) {
    __typename
  }
}`

const mutationSetTransactionTags = `
mutation Web_SetTransactionTags($input: SetTransactionTagsInput!) {
  setTransactionTags(input: $input) {
    transaction { id tags { id name } }
    errors { message }
  }
}`
